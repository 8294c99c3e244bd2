package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
	portssvc "github.com/dgrad/efintrack/internal/core/ports/services"
	"github.com/dgrad/efintrack/internal/core/services"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	author   = "agent-42"
	approver = "dg-1"
	finance  = "cd-finance"
)

// fakeClock is a settable clock shared by every service of a container.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 10, 0, 0, 0, time.UTC)
}

// KernelSuite runs services against the in-memory store with a pinned calendar.
type KernelSuite struct {
	suite.Suite
	ctx    context.Context
	db     *memory.DB
	clock  *fakeClock
	policy domain.Policy
	svc    *portssvc.ServiceContainer
}

func (s *KernelSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = memory.New()
	s.clock = &fakeClock{now: day(2024, time.March, 15)}
	s.policy = domain.DefaultPolicy()
	s.rebuild()
}

// rebuild recreates the services over the same store, picking up s.policy.
func (s *KernelSuite) rebuild() {
	s.svc = services.NewServiceContainer(services.Dependencies{
		TxManager: s.db,
		Policy:    s.policy,
		Clock:     s.clock.Now,
	})
}

func (s *KernelSuite) openAccount(bank, number string, currency domain.Currency, initial string) *domain.BankAccount {
	acc, err := s.svc.Account.OpenAccount(s.ctx, dto.OpenAccountRequest{
		Bank:           bank,
		AccountNumber:  number,
		Currency:       string(currency),
		InitialBalance: decimal.RequireFromString(initial),
	}, finance)
	s.Require().NoError(err)
	return acc
}

func (s *KernelSuite) balance(accountID string) string {
	b, err := s.svc.Account.GetAccountBalance(s.ctx, accountID)
	s.Require().NoError(err)
	return b.Balance.StringFixed(2)
}

func (s *KernelSuite) validatedRequest(currency domain.Currency, total string) *domain.Request {
	r, err := s.svc.Request.CreateRequest(s.ctx, dto.CreateRequestRequest{
		Service:     "logistics",
		NatureCode:  "6011",
		Description: "field mission",
		Total:       dto.AmountDTO{Currency: string(currency), Value: decimal.RequireFromString(total)},
	}, author)
	s.Require().NoError(err)
	r, err = s.svc.Request.ValidateRequest(s.ctx, r.Reference, dto.ValidateRequestRequest{
		Decision: string(domain.RequestValidatedDG),
	}, approver)
	s.Require().NoError(err)
	return r
}

func (s *KernelSuite) statementWith(period string, refs ...string) *domain.Statement {
	st, err := s.svc.Statement.OpenStatement(s.ctx, dto.OpenStatementRequest{Period: period}, finance)
	s.Require().NoError(err)
	if len(refs) == 0 {
		return st
	}
	st, err = s.svc.Statement.AddMembers(s.ctx, st.Number, refs, finance)
	s.Require().NoError(err)
	return st
}

func (s *KernelSuite) pay(statement, request, currency, value string, accountID string) (*domain.Payment, []domain.Warning, error) {
	return s.svc.Payment.RecordPayment(s.ctx, dto.RecordPaymentRequest{
		StatementNumber: statement,
		RequestRef:      request,
		Amount:          dto.AmountDTO{Currency: currency, Value: decimal.RequireFromString(value)},
		AccountID:       &accountID,
	}, finance)
}

func (s *KernelSuite) request(ref string) *domain.Request {
	r, err := s.svc.Request.GetRequest(s.ctx, ref)
	s.Require().NoError(err)
	return r
}

func (s *KernelSuite) journalCommands() []string {
	page, err := s.svc.Journal.ListJournal(s.ctx, dto.ListJournalParams{Limit: dto.MaxPageSize})
	s.Require().NoError(err)
	out := make([]string, 0, len(page.Entries))
	for _, e := range page.Entries {
		out = append(out, e.Command)
	}
	return out
}
