package handlers

import (
	"fmt"

	"github.com/dgrad/efintrack/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the `currency` and `period` binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("currency", validateCurrency); err != nil {
		return fmt.Errorf("failed to register currency validator: %w", err)
	}
	if err := v.RegisterValidation("period", validatePeriod); err != nil {
		return fmt.Errorf("failed to register period validator: %w", err)
	}
	return nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return domain.Currency(fl.Field().String()).Valid()
}

func validatePeriod(fl validator.FieldLevel) bool {
	_, err := domain.ParsePeriod(fl.Field().String())
	return err == nil
}
