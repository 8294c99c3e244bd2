package services

import (
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
)

// Dependencies carries what every service needs.
type Dependencies struct {
	TxManager         portsrepo.TransactionManager
	Policy            domain.Policy
	Clock             Clock // Defaults to time.Now
	ReferenceAttempts int   // Defaults to DefaultReferenceAttempts
}

func (d Dependencies) base() BaseService {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	return BaseService{TxManager: d.TxManager, Policy: d.Policy, Clock: clock}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(deps Dependencies) *portssvc.ServiceContainer {
	ledger := NewLedgerService(deps.Policy, deps.Clock)
	refs := NewReferenceGenerator(deps.ReferenceAttempts)

	return &portssvc.ServiceContainer{
		Account:   NewAccountService(deps, ledger),
		Request:   NewRequestService(deps, refs),
		Statement: NewStatementService(deps, refs),
		Cheque:    NewChequeService(deps, refs),
		Payment:   NewPaymentService(deps, ledger, refs),
		Receipt:   NewReceiptService(deps, ledger, refs),
		Closing:   NewClosingService(deps),
		Journal:   NewJournalService(deps),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade   = (*accountService)(nil)
	_ portssvc.RequestSvcFacade   = (*requestService)(nil)
	_ portssvc.StatementSvcFacade = (*statementService)(nil)
	_ portssvc.ChequeSvcFacade    = (*chequeService)(nil)
	_ portssvc.PaymentSvcFacade   = (*paymentService)(nil)
	_ portssvc.ReceiptSvcFacade   = (*receiptService)(nil)
	_ portssvc.ClosingSvcFacade   = (*closingService)(nil)
	_ portssvc.JournalSvc         = (*journalService)(nil)
)
