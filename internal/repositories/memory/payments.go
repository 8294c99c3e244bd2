package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
)

func (s *store) SavePayment(ctx context.Context, payment domain.Payment) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.payments[payment.Reference]; exists {
			err = fmt.Errorf("%w: payment %s", apperrors.ErrDuplicate, payment.Reference)
			return
		}
		st.payments[payment.Reference] = payment
	})
	return err
}

func (s *store) UpdatePayment(ctx context.Context, payment domain.Payment) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.payments[payment.Reference]; !exists {
			err = fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, payment.Reference)
			return
		}
		st.payments[payment.Reference] = payment
	})
	return err
}

func (s *store) FindPaymentByRef(ctx context.Context, ref string) (*domain.Payment, error) {
	var (
		p  domain.Payment
		ok bool
	)
	s.read(func(st *state) { p, ok = st.payments[ref] })
	if !ok {
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, ref)
	}
	return &p, nil
}

func (s *store) FindPaymentByRefForUpdate(ctx context.Context, ref string) (*domain.Payment, error) {
	return s.FindPaymentByRef(ctx, ref)
}

func (s *store) ListPayments(ctx context.Context, filter portsrepo.PaymentFilter) ([]domain.Payment, error) {
	var out []domain.Payment
	s.read(func(st *state) {
		out = page(st.payments, filter.AfterRef, filter.Limit, func(p domain.Payment) bool {
			if filter.StatementNumber != "" && p.StatementNumber != filter.StatementNumber {
				return false
			}
			return filter.RequestRef == "" || p.RequestRef == filter.RequestRef
		})
	})
	return out, nil
}

func (s *store) SaveCheque(ctx context.Context, cheque domain.Cheque) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.cheques[cheque.Number]; exists {
			err = fmt.Errorf("%w: cheque %s", apperrors.ErrDuplicate, cheque.Number)
			return
		}
		for _, c := range st.cheques {
			if c.StatementNumber == cheque.StatementNumber && c.Active() {
				err = fmt.Errorf("%w: statement %s already has cheque %s", apperrors.ErrDuplicate, c.StatementNumber, c.Number)
				return
			}
		}
		st.cheques[cheque.Number] = cheque
	})
	return err
}

func (s *store) UpdateCheque(ctx context.Context, cheque domain.Cheque) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.cheques[cheque.Number]; !exists {
			err = fmt.Errorf("%w: cheque %s", apperrors.ErrNotFound, cheque.Number)
			return
		}
		st.cheques[cheque.Number] = cheque
	})
	return err
}

func (s *store) FindChequeByNumber(ctx context.Context, number string) (*domain.Cheque, error) {
	var (
		c  domain.Cheque
		ok bool
	)
	s.read(func(st *state) { c, ok = st.cheques[number] })
	if !ok {
		return nil, fmt.Errorf("%w: cheque %s", apperrors.ErrNotFound, number)
	}
	return &c, nil
}

func (s *store) FindChequeByNumberForUpdate(ctx context.Context, number string) (*domain.Cheque, error) {
	return s.FindChequeByNumber(ctx, number)
}

func (s *store) FindActiveChequeByStatement(ctx context.Context, statementNumber string) (*domain.Cheque, error) {
	var found *domain.Cheque
	s.read(func(st *state) {
		for _, c := range st.cheques {
			if c.StatementNumber == statementNumber && c.Active() {
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("%w: active cheque for statement %s", apperrors.ErrNotFound, statementNumber)
	}
	return found, nil
}

func (s *store) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.receipts[receipt.Reference]; exists {
			err = fmt.Errorf("%w: receipt %s", apperrors.ErrDuplicate, receipt.Reference)
			return
		}
		receipt.PostedMovementIDs = slices.Clone(receipt.PostedMovementIDs)
		st.receipts[receipt.Reference] = receipt
	})
	return err
}

func (s *store) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	var err error
	s.write(func(st *state) {
		if _, exists := st.receipts[receipt.Reference]; !exists {
			err = fmt.Errorf("%w: receipt %s", apperrors.ErrNotFound, receipt.Reference)
			return
		}
		receipt.PostedMovementIDs = slices.Clone(receipt.PostedMovementIDs)
		st.receipts[receipt.Reference] = receipt
	})
	return err
}

func (s *store) FindReceiptByRef(ctx context.Context, ref string) (*domain.Receipt, error) {
	var (
		r  domain.Receipt
		ok bool
	)
	s.read(func(st *state) { r, ok = st.receipts[ref] })
	if !ok {
		return nil, fmt.Errorf("%w: receipt %s", apperrors.ErrNotFound, ref)
	}
	r.PostedMovementIDs = slices.Clone(r.PostedMovementIDs)
	return &r, nil
}

func (s *store) FindReceiptByRefForUpdate(ctx context.Context, ref string) (*domain.Receipt, error) {
	return s.FindReceiptByRef(ctx, ref)
}

func (s *store) ListReceipts(ctx context.Context, filter portsrepo.ReceiptFilter) ([]domain.Receipt, error) {
	var out []domain.Receipt
	s.read(func(st *state) {
		out = page(st.receipts, filter.AfterRef, filter.Limit, func(r domain.Receipt) bool {
			if !filter.IncludeDeleted && r.IsDeleted() {
				return false
			}
			if filter.Bank != "" && r.Bank != filter.Bank {
				return false
			}
			if filter.Validated != nil && r.Validated != *filter.Validated {
				return false
			}
			return filter.Period == nil || filter.Period.Contains(r.EncashedOn)
		})
	})
	return out, nil
}

func (s *store) SumValidatedReceipts(ctx context.Context, period domain.Period) (domain.CurrencyTotals, error) {
	var totals domain.CurrencyTotals
	s.read(func(st *state) {
		for _, r := range st.receipts {
			if r.Validated && !r.IsDeleted() && period.Contains(r.EncashedOn) {
				totals.CDF = totals.CDF.Add(r.AmountCDF)
				totals.USD = totals.USD.Add(r.AmountUSD)
			}
		}
	})
	return totals, nil
}
