package mapping

import (
	"fmt"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/dgrad/efintrack/internal/dto"
)

// ToDomainAmount converts an AmountDTO, enforcing currency, sign and scale.
func ToDomainAmount(a dto.AmountDTO) (domain.Amount, error) {
	currency, err := domain.ParseCurrency(a.Currency)
	if err != nil {
		return domain.Amount{}, err
	}
	return domain.NewAmount(currency, a.Value)
}

// ToDomainRequestEdit converts an edit DTO. Nil fields stay nil.
func ToDomainRequestEdit(req dto.EditRequestRequest) (domain.RequestEdit, error) {
	edit := domain.RequestEdit{
		Service:          req.Service,
		NatureCode:       req.NatureCode,
		Description:      req.Description,
		AttachmentHandle: req.AttachmentHandle,
	}
	if req.Total != nil {
		total, err := ToDomainAmount(*req.Total)
		if err != nil {
			return domain.RequestEdit{}, err
		}
		edit.Total = &total
	}
	return edit, nil
}

// ToDomainDate parses a wire date in UTC.
func ToDomainDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", apperrors.ErrValidation, s)
	}
	return t, nil
}
