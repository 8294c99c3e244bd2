package memory

import (
	"context"
	"fmt"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

func (s *store) FindAccountByID(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	var (
		acc domain.BankAccount
		ok  bool
	)
	s.read(func(st *state) { acc, ok = st.accounts[accountID] })
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &acc, nil
}

func (s *store) FindAccountByIDForUpdate(ctx context.Context, accountID string) (*domain.BankAccount, error) {
	return s.FindAccountByID(ctx, accountID)
}

func (s *store) ListAccounts(ctx context.Context, filter portsrepo.AccountFilter) ([]domain.BankAccount, error) {
	var out []domain.BankAccount
	s.read(func(st *state) {
		out = page(st.accounts, filter.AfterID, filter.Limit, func(a domain.BankAccount) bool {
			if filter.Bank != "" && a.Bank != filter.Bank {
				return false
			}
			if filter.Currency != "" && a.Currency != filter.Currency {
				return false
			}
			return !filter.ActiveOnly || a.IsActive
		})
	})
	return out, nil
}

func (s *store) SaveAccount(ctx context.Context, account domain.BankAccount) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.accounts[account.AccountID]; exists {
			err = fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, account.AccountID)
			return
		}
		for _, a := range st.accounts {
			if a.Bank == account.Bank && a.AccountNumber == account.AccountNumber {
				err = fmt.Errorf("%w: account %s at %s", apperrors.ErrDuplicate, account.AccountNumber, account.Bank)
				return
			}
		}
		st.accounts[account.AccountID] = account
	})
	return err
}

func (s *store) UpdateAccount(ctx context.Context, account domain.BankAccount, expectedVersion int64) error {
	var err error
	s.write(func(st *state) {
		current, ok := st.accounts[account.AccountID]
		if !ok {
			err = fmt.Errorf("%w: account %s", apperrors.ErrNotFound, account.AccountID)
			return
		}
		if current.Version != expectedVersion {
			err = fmt.Errorf("%w: account %s is at version %d, expected %d", apperrors.ErrConflict, account.AccountID, current.Version, expectedVersion)
			return
		}
		// Identity and opening fields are immutable.
		current.CurrentBalance = account.CurrentBalance
		current.LastMovementAt = account.LastMovementAt
		current.IsActive = account.IsActive
		current.Version = account.Version
		current.LastUpdatedAt = account.LastUpdatedAt
		current.LastUpdatedBy = account.LastUpdatedBy
		st.accounts[account.AccountID] = current
	})
	return err
}

func (s *store) FindMovementByID(ctx context.Context, movementID string) (*domain.Movement, error) {
	var (
		m  domain.Movement
		ok bool
	)
	s.read(func(st *state) { m, ok = st.movements[movementID] })
	if !ok {
		return nil, fmt.Errorf("%w: movement %s", apperrors.ErrNotFound, movementID)
	}
	return &m, nil
}

func (s *store) ListMovements(ctx context.Context, accountID string, afterSeq int64, limit int) ([]domain.Movement, error) {
	out := make([]domain.Movement, 0)
	s.read(func(st *state) {
		for _, id := range st.movementLog {
			m := st.movements[id]
			if m.AccountID != accountID || m.Sequence <= afterSeq {
				continue
			}
			out = append(out, m)
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

func (s *store) FindMovementsByCause(ctx context.Context, cause domain.MovementCause, causeRef string) ([]domain.Movement, error) {
	out := make([]domain.Movement, 0)
	s.read(func(st *state) {
		for _, id := range st.movementLog {
			if m := st.movements[id]; m.Cause == cause && m.CauseRef == causeRef {
				out = append(out, m)
			}
		}
	})
	return out, nil
}

func (s *store) FindReversalOf(ctx context.Context, movementID string) (*domain.Movement, error) {
	var found *domain.Movement
	s.read(func(st *state) {
		for _, id := range st.movementLog {
			m := st.movements[id]
			if m.ReversesMovementID != nil && *m.ReversesMovementID == movementID {
				found = &m
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: reversal of movement %s", apperrors.ErrNotFound, movementID)
	}
	return found, nil
}

func (s *store) SumSignedMovements(ctx context.Context, accountID string) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var count int64
	s.read(func(st *state) {
		for _, m := range st.movements {
			if m.AccountID == accountID {
				sum = sum.Add(m.Signed())
				count++
			}
		}
	})
	return sum, count, nil
}

func (s *store) SaveMovement(ctx context.Context, movement domain.Movement) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.movements[movement.MovementID]; exists {
			err = fmt.Errorf("%w: movement %s", apperrors.ErrDuplicate, movement.MovementID)
			return
		}
		if movement.ReversesMovementID != nil {
			for _, m := range st.movements {
				if m.ReversesMovementID != nil && *m.ReversesMovementID == *movement.ReversesMovementID {
					err = fmt.Errorf("%w: movement %s was already reversed", apperrors.ErrDuplicate, *movement.ReversesMovementID)
					return
				}
			}
		}
		st.movements[movement.MovementID] = movement
		st.movementLog = append(st.movementLog, movement.MovementID)
	})
	return err
}
