package pgsql

import (
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
)

// pgxStore hands out repositories bound to one querier: the pool for
// reads, or the open transaction inside WithinTx.
type pgxStore struct {
	db querier
}

var _ portsrepo.Store = (*pgxStore)(nil)

func newStore(db querier) *pgxStore {
	return &pgxStore{db: db}
}

func (s *pgxStore) Accounts() portsrepo.AccountRepositoryFacade {
	return newPgxAccountRepository(s.db)
}

func (s *pgxStore) Movements() portsrepo.MovementRepositoryFacade {
	return newPgxMovementRepository(s.db)
}

func (s *pgxStore) Requests() portsrepo.RequestRepositoryFacade {
	return newPgxRequestRepository(s.db)
}

func (s *pgxStore) Statements() portsrepo.StatementRepositoryFacade {
	return newPgxStatementRepository(s.db)
}

func (s *pgxStore) ExpenseLines() portsrepo.ExpenseLineRepositoryFacade {
	return newPgxExpenseLineRepository(s.db)
}

func (s *pgxStore) Payments() portsrepo.PaymentRepositoryFacade {
	return newPgxPaymentRepository(s.db)
}

func (s *pgxStore) Receipts() portsrepo.ReceiptRepositoryFacade {
	return newPgxReceiptRepository(s.db)
}

func (s *pgxStore) Cheques() portsrepo.ChequeRepositoryFacade {
	return newPgxChequeRepository(s.db)
}

func (s *pgxStore) Closings() portsrepo.ClosingRepositoryFacade {
	return newPgxClosingRepository(s.db)
}

func (s *pgxStore) References() portsrepo.ReferenceRepository {
	return newPgxReferenceRepository(s.db)
}

func (s *pgxStore) Journal() portsrepo.JournalRepositoryFacade {
	return newPgxJournalRepository(s.db)
}
