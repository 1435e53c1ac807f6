package services

import (
	"context"

	"github.com/arafah-soft/agency_erp/internal/dto"
)

// RebuildSvcFacade replays the transaction log and reports drift between the
// log and the stored derived state (balances, dues, family aggregates).
type RebuildSvcFacade interface {
	VerifyLedger(ctx context.Context) (*dto.LedgerVerifyReport, error)
}
