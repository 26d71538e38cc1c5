// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the outcome of a previously processed intake request,
// keyed by the client-supplied Idempotency-Key. It enables safe retries for
// POST /submissions by returning the originally created submission without
// inserting a duplicate row or re-running fulfillment.
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_idempotency_key"`
	SubmissionID uint      `gorm:"type:INTEGER NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
