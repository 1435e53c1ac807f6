package services

import (
	portsrepo "github.com/arafah-soft/agency_erp/internal/core/ports/repositories"
	portssvc "github.com/arafah-soft/agency_erp/internal/core/ports/services"
)

// Repositories bundles every persistence port the services need.
type Repositories struct {
	Ledger   portsrepo.LedgerRepository
	Account  portsrepo.AccountRepository
	Party    portsrepo.PartyRepository
	Currency portsrepo.CurrencyRepository
	User     portsrepo.UserRepository
}

// NewServiceContainer wires every service facade against the given repositories.
func NewServiceContainer(repos Repositories) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Ledger:   NewLedgerService(repos.Ledger),
		Account:  NewAccountService(repos.Account),
		Party:    NewPartyService(repos.Party),
		Family:   NewFamilyService(repos.Ledger),
		Exchange: NewExchangeService(repos.Ledger, repos.Currency),
		User:     NewUserService(repos.User),
		Rebuild:  NewRebuildService(repos.Ledger, repos.Account, repos.Party),
	}
}
