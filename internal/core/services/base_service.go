package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/dgrad/efintrack/internal/observability/metrics"
	"github.com/google/uuid"
)

// Clock returns the current time. Tests replace it to pin the calendar.
type Clock func() time.Time

// BaseService provides common functionality for all services
type BaseService struct {
	TxManager portsrepo.TransactionManager
	Policy    domain.Policy
	Clock     Clock
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// now returns the service clock in UTC.
func (s *BaseService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock().UTC()
}

// execute runs one command in one transaction and records its outcome.
func (s *BaseService) execute(ctx context.Context, command string, fn portsrepo.TxFunc) error {
	start := time.Now()
	err := s.TxManager.WithinTx(ctx, fn)
	metrics.ObserveCommand(command, err, time.Since(start))
	switch {
	case err == nil:
	case expected(err):
		s.LogDebug(ctx, "Command refused", slog.String("command", command), slog.String("reason", err.Error()))
	default:
		s.LogError(ctx, err, "Command failed", slog.String("command", command))
	}
	return err
}

// journal appends the command to the command journal inside tx.
func (s *BaseService) journal(ctx context.Context, tx portsrepo.Store, command, actor, subject string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s journal payload: %w", command, err)
	}
	entry := domain.JournalEntry{
		EntryID:    uuid.NewString(),
		Command:    command,
		Actor:      actor,
		Subject:    subject,
		Payload:    raw,
		RecordedAt: s.now(),
	}
	if err := tx.Journal().AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to journal %s: %w", command, err)
	}
	return nil
}

// integrityFailure emits the alertable diagnostic for a failed invariant and
// returns err so the caller can abort the transaction with it.
func (s *BaseService) integrityFailure(ctx context.Context, check string, err error) error {
	metrics.IncIntegrityFailure(check)
	s.LogError(ctx, err, "Integrity check failed",
		slog.String("diagnostic", "integrity"),
		slog.String("check", check))
	return err
}

// ensurePeriodOpen refuses changes that would alter the figures of a closed period.
func (s *BaseService) ensurePeriodOpen(ctx context.Context, tx portsrepo.Store, period domain.Period) error {
	closing, err := tx.Closings().FindClosingByPeriod(ctx, period)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if closing.IsClosed() {
		return apperrors.NewClosingNotAllowed(apperrors.ReasonAlreadyClosed, period.String())
	}
	return nil
}

// expected reports whether err is an outcome the caller caused and can act on.
func expected(err error) bool {
	if apperrors.IsPrecondition(err) {
		return true
	}
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrValidation,
		apperrors.ErrDuplicate,
		apperrors.ErrForbiddenActor,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func requireActor(actor string) error {
	if actor == "" {
		return fmt.Errorf("%w: actor is required", apperrors.ErrValidation)
	}
	return nil
}
