// Package models holds the row shapes of the PostgreSQL schema. Field tags
// name the columns so rows can be collected with pgx.RowToStructByName.
package models

import "time"

// AuditFields mirrors the audit columns shared by most tables.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
}
