package store

import (
	"adr.app/ledger/core/db/sqlc"
)

type Stores struct {
	queries *sqlc.Queries
}

func NewStores(queries *sqlc.Queries) *Stores {
	return &Stores{queries: queries}
}

func (s *Stores) Incidents() IncidentStore {
	return newIncidentStore(s.queries)
}

func (s *Stores) Index() IndexStore {
	return newIndexStore(s.queries)
}

func (s *Stores) Audit() AuditStore {
	return newAuditStore(s.queries)
}

func (s *Stores) Changes() ChangeStore {
	return newChangeStore(s.queries)
}

func (s *Stores) SOPs() SOPStore {
	return newSOPStore(s.queries)
}
