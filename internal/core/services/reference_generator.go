package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/middleware"
	"github.com/dgrad/efintrack/internal/observability/metrics"
)

// DefaultReferenceAttempts bounds collision retries when nothing is configured.
const DefaultReferenceAttempts = 5

// ReferenceGenerator mints business references from per-scope counters.
// A counter that fell behind the references in use (restored data, manual
// inserts) is advanced to the highest sequence found and the draw retried.
type ReferenceGenerator struct {
	maxAttempts int
}

// NewReferenceGenerator creates a generator. Non-positive maxAttempts uses the default.
func NewReferenceGenerator(maxAttempts int) *ReferenceGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultReferenceAttempts
	}
	return &ReferenceGenerator{maxAttempts: maxAttempts}
}

// Next returns an unused reference of scope inside tx.
func (g *ReferenceGenerator) Next(ctx context.Context, tx portsrepo.Store, scope domain.ReferenceScope) (string, error) {
	refs := tx.References()
	key := scope.Key()

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		n, err := refs.NextSequence(ctx, key)
		if err != nil {
			return "", fmt.Errorf("failed to draw %s sequence: %w", key, err)
		}
		if n > scope.Max() {
			return "", fmt.Errorf("%w: %s passed %d", apperrors.ErrReferenceExhausted, key, scope.Max())
		}

		ref := scope.Format(n)
		exists, err := refs.ReferenceExists(ctx, scope, ref)
		if err != nil {
			return "", fmt.Errorf("failed to check reference %s: %w", ref, err)
		}
		if !exists {
			return ref, nil
		}

		metrics.IncReferenceRetry(string(scope.Family))
		middleware.GetLoggerFromCtx(ctx).Warn("Reference collision, rescanning",
			slog.String("reference", ref),
			slog.Int("attempt", attempt))

		highest, err := refs.MaxSequenceInUse(ctx, scope)
		if err != nil {
			return "", fmt.Errorf("failed to rescan %s: %w", key, err)
		}
		if err := refs.AdvanceSequence(ctx, key, highest); err != nil {
			return "", fmt.Errorf("failed to advance %s: %w", key, err)
		}
	}

	return "", fmt.Errorf("%w: %s after %d attempts", apperrors.ErrReferenceExhausted, key, g.maxAttempts)
}
