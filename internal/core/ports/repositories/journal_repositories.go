package repositories

import (
	"context"

	"github.com/dgrad/efintrack/internal/core/domain"
)

// ReferenceRepository backs reference generation. Counters are keyed by
// domain.ReferenceScope.Key().
type ReferenceRepository interface {
	// NextSequence increments the counter for key and returns the new value.
	NextSequence(ctx context.Context, key string) (int64, error)

	// AdvanceSequence raises the counter for key to at least floor.
	AdvanceSequence(ctx context.Context, key string, floor int64) error

	// ReferenceExists reports whether ref is already used by an entity of the scope's family.
	ReferenceExists(ctx context.Context, scope domain.ReferenceScope, ref string) (bool, error)

	// MaxSequenceInUse scans the entities of the scope for the highest sequence in use.
	MaxSequenceInUse(ctx context.Context, scope domain.ReferenceScope) (int64, error)
}

// JournalReader defines read operations for the command journal
type JournalReader interface {
	// ListEntries returns entries with Seq > afterSeq in append order.
	ListEntries(ctx context.Context, afterSeq int64, limit int) ([]domain.JournalEntry, error)
}

// JournalWriter appends to the command journal
type JournalWriter interface {
	AppendEntry(ctx context.Context, entry domain.JournalEntry) error
}

// JournalRepositoryFacade combines journal reads and appends
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
