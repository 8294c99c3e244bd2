package models

import "time"

// JournalEntry is a row of the command_journal table. Seq is a bigserial.
type JournalEntry struct {
	Seq        int64     `db:"seq"`
	EntryID    string    `db:"entry_id"`
	Command    string    `db:"command"`
	Actor      string    `db:"actor"`
	Subject    string    `db:"subject"`
	Payload    []byte    `db:"payload"`
	RecordedAt time.Time `db:"recorded_at"`
}
