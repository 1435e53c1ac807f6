package repositories

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
)

// UserRepository persists staff users.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
