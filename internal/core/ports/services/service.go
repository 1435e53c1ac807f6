package services

// ServiceContainer aggregates the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Ledger   LedgerSvcFacade
	Account  AccountSvcFacade
	Party    PartySvcFacade
	Family   FamilySvcFacade
	Exchange ExchangeSvcFacade
	User     UserSvcFacade
	Rebuild  RebuildSvcFacade
}
