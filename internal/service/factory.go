package service

import (
	"adr.app/ledger/core/config"
)

type Services struct {
	stores    StoreProvider
	txRunner  TxRunner
	publisher ChangePublisher
	queryCfg  config.QueryConfig
}

func NewServices(stores StoreProvider, txRunner TxRunner, publisher ChangePublisher, queryCfg config.QueryConfig) *Services {
	return &Services{
		stores:    stores,
		txRunner:  txRunner,
		publisher: publisher,
		queryCfg:  queryCfg,
	}
}

func (s *Services) Incidents() IncidentService {
	return NewIncidentService(s.txRunner, s.stores.Incidents(), s.publisher)
}

func (s *Services) Queries() QueryService {
	return NewQueryService(s.stores.Incidents(), s.stores.Index(), s.stores.Audit(), s.queryCfg)
}

func (s *Services) Audit() AuditService {
	return NewAuditService(s.txRunner)
}

func (s *Services) SOPs() SOPService {
	return NewSOPService(s.txRunner, s.stores.SOPs(), s.queryCfg)
}
