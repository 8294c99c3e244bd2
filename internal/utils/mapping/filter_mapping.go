package mapping

import (
	"fmt"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/dto"
	"github.com/dgrad/efintrack/internal/utils/pagination"
)

// List filters fetch one row more than the page so the caller can tell
// whether another page follows. See pagination.Trim.

func decodeCursor(token string) (string, error) {
	key, err := pagination.DecodeKeyToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	return key, nil
}

func optionalCurrency(code string) (domain.Currency, error) {
	if code == "" {
		return "", nil
	}
	return domain.ParseCurrency(code)
}

// ToAccountFilter converts list_accounts parameters.
func ToAccountFilter(p dto.ListAccountsParams) (portsrepo.AccountFilter, error) {
	after, err := decodeCursor(p.NextToken)
	if err != nil {
		return portsrepo.AccountFilter{}, err
	}
	currency, err := optionalCurrency(p.Currency)
	if err != nil {
		return portsrepo.AccountFilter{}, err
	}
	return portsrepo.AccountFilter{
		Bank:       p.Bank,
		Currency:   currency,
		ActiveOnly: p.ActiveOnly,
		AfterID:    after,
		Limit:      dto.ClampLimit(p.Limit) + 1,
	}, nil
}

// ToRequestFilter converts list_requests parameters.
func ToRequestFilter(p dto.ListRequestsParams) (portsrepo.RequestFilter, error) {
	after, err := decodeCursor(p.NextToken)
	if err != nil {
		return portsrepo.RequestFilter{}, err
	}
	currency, err := optionalCurrency(p.Currency)
	if err != nil {
		return portsrepo.RequestFilter{}, err
	}
	return portsrepo.RequestFilter{
		State:    domain.RequestState(p.State),
		Service:  p.Service,
		Author:   p.Author,
		Currency: currency,
		AfterRef: after,
		Limit:    dto.ClampLimit(p.Limit) + 1,
	}, nil
}

// ToStatementFilter converts list_statements parameters.
func ToStatementFilter(p dto.ListStatementsParams) (portsrepo.StatementFilter, error) {
	after, err := decodeCursor(p.NextToken)
	if err != nil {
		return portsrepo.StatementFilter{}, err
	}
	return portsrepo.StatementFilter{
		Year:        p.Year,
		Sealed:      p.Sealed,
		Settled:     p.Settled,
		AfterNumber: after,
		Limit:       dto.ClampLimit(p.Limit) + 1,
	}, nil
}

// ToPaymentFilter converts list_payments parameters.
func ToPaymentFilter(p dto.ListPaymentsParams) (portsrepo.PaymentFilter, error) {
	after, err := decodeCursor(p.NextToken)
	if err != nil {
		return portsrepo.PaymentFilter{}, err
	}
	return portsrepo.PaymentFilter{
		StatementNumber: p.StatementNumber,
		RequestRef:      p.RequestRef,
		AfterRef:        after,
		Limit:           dto.ClampLimit(p.Limit) + 1,
	}, nil
}

// ToReceiptFilter converts list_receipts parameters.
func ToReceiptFilter(p dto.ListReceiptsParams) (portsrepo.ReceiptFilter, error) {
	after, err := decodeCursor(p.NextToken)
	if err != nil {
		return portsrepo.ReceiptFilter{}, err
	}
	f := portsrepo.ReceiptFilter{
		Bank:           p.Bank,
		Validated:      p.Validated,
		IncludeDeleted: p.IncludeDeleted,
		AfterRef:       after,
		Limit:          dto.ClampLimit(p.Limit) + 1,
	}
	if p.Period != "" {
		period, err := domain.ParsePeriod(p.Period)
		if err != nil {
			return portsrepo.ReceiptFilter{}, err
		}
		f.Period = &period
	}
	return f, nil
}

// ToClosingFilter converts list_closings parameters.
func ToClosingFilter(p dto.ListClosingsParams) (portsrepo.ClosingFilter, error) {
	after, err := decodeCursor(p.NextToken)
	if err != nil {
		return portsrepo.ClosingFilter{}, err
	}
	f := portsrepo.ClosingFilter{
		Status: domain.ClosingStatus(p.Status),
		Limit:  dto.ClampLimit(p.Limit) + 1,
	}
	if after != "" {
		period, err := domain.ParsePeriod(after)
		if err != nil {
			return portsrepo.ClosingFilter{}, err
		}
		f.AfterPeriod = &period
	}
	return f, nil
}
