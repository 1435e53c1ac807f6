package services

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/core/domain"
	"github.com/arafah-soft/agency_erp/internal/dto"
)

// UserSvcFacade manages staff users and credential checks.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)
	Authenticate(ctx context.Context, username string, password string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
