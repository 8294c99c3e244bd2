package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgrad/efintrack/internal/core/domain"
	portsrepo "github.com/dgrad/efintrack/internal/core/ports/repositories"
	"github.com/dgrad/efintrack/internal/models"
	"github.com/jackc/pgx/v5"
)

const journalColumns = `seq, entry_id, command, actor, subject, payload, recorded_at`

type PgxJournalRepository struct {
	db querier
}

func newPgxJournalRepository(db querier) *PgxJournalRepository {
	return &PgxJournalRepository{db: db}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// AppendEntry inserts an entry; the database assigns Seq.
func (r *PgxJournalRepository) AppendEntry(ctx context.Context, entry domain.JournalEntry) error {
	payload := []byte(entry.Payload)
	if len(payload) == 0 {
		payload = []byte("null")
	}
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO command_journal (entry_id, command, actor, subject, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	if _, err := r.db.Exec(ctx, query, entry.EntryID, entry.Command, entry.Actor, entry.Subject, string(payload), recordedAt); err != nil {
		return fmt.Errorf("failed to append journal entry %s: %w", entry.EntryID, err)
	}
	return nil
}

// ListEntries returns entries after afterSeq in append order.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, afterSeq int64, limit int) ([]domain.JournalEntry, error) {
	var w where
	w.add("seq > ?", afterSeq)
	query := `SELECT ` + journalColumns + ` FROM command_journal` + w.clause() + ` ORDER BY seq` + w.limit(limit)

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	modelEntries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal entries: %w", err)
	}

	entries := make([]domain.JournalEntry, 0, len(modelEntries))
	for _, m := range modelEntries {
		entries = append(entries, domain.JournalEntry{
			EntryID:    m.EntryID,
			Seq:        m.Seq,
			Command:    m.Command,
			Actor:      m.Actor,
			Subject:    m.Subject,
			Payload:    json.RawMessage(m.Payload),
			RecordedAt: m.RecordedAt,
		})
	}
	return entries, nil
}

type PgxReferenceRepository struct {
	db querier
}

func newPgxReferenceRepository(db querier) *PgxReferenceRepository {
	return &PgxReferenceRepository{db: db}
}

var _ portsrepo.ReferenceRepository = (*PgxReferenceRepository)(nil)

// referenceTables maps a family to the table and column holding its references.
var referenceTables = map[domain.ReferenceFamily]struct{ table, column string }{
	domain.FamilyRequest:     {"requests", "reference"},
	domain.FamilyStatement:   {"statements", "number"},
	domain.FamilyPayment:     {"payments", "reference"},
	domain.FamilyReceipt:     {"receipts", "reference"},
	domain.FamilyCheque:      {"cheques", "number"},
	domain.FamilyExpenseLine: {"expense_lines", "code"},
}

// NextSequence increments the counter; the row lock serialises concurrent draws.
func (r *PgxReferenceRepository) NextSequence(ctx context.Context, key string) (int64, error) {
	query := `
		INSERT INTO reference_counters (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = reference_counters.value + 1
		RETURNING value;
	`
	var n int64
	if err := r.db.QueryRow(ctx, query, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return n, nil
}

func (r *PgxReferenceRepository) AdvanceSequence(ctx context.Context, key string, floor int64) error {
	query := `
		INSERT INTO reference_counters (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = GREATEST(reference_counters.value, EXCLUDED.value);
	`
	if _, err := r.db.Exec(ctx, query, key, floor); err != nil {
		return fmt.Errorf("failed to advance counter %s: %w", key, err)
	}
	return nil
}

func (r *PgxReferenceRepository) ReferenceExists(ctx context.Context, scope domain.ReferenceScope, ref string) (bool, error) {
	t, ok := referenceTables[scope.Family]
	if !ok {
		return false, fmt.Errorf("unknown reference family %q", scope.Family)
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1);`, t.table, t.column)
	if err := r.db.QueryRow(ctx, query, ref).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check reference %s: %w", ref, err)
	}
	return exists, nil
}

// MaxSequenceInUse relies on zero padding: the greatest reference of the scope
// carries the greatest sequence.
func (r *PgxReferenceRepository) MaxSequenceInUse(ctx context.Context, scope domain.ReferenceScope) (int64, error) {
	t, ok := referenceTables[scope.Family]
	if !ok {
		return 0, fmt.Errorf("unknown reference family %q", scope.Family)
	}
	query := fmt.Sprintf(`SELECT MAX(%[2]s) FROM %[1]s WHERE %[2]s LIKE $1 AND length(%[2]s) = $2;`, t.table, t.column)

	var highest *string
	width := len(scope.Prefix()) + scope.Width()
	if err := r.db.QueryRow(ctx, query, scope.Prefix()+"%", width).Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to scan %s references: %w", scope.Key(), err)
	}
	if highest == nil {
		return 0, nil
	}
	n, _ := scope.Sequence(*highest)
	return n, nil
}
