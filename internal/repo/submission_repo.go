// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Submission
// model, including the fulfillment-state updates owned by the orchestrator.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-certificate-backend/internal/domain"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// CreateSubmission inserts a new submission row. The store assigns the id
// and creation timestamp.
func CreateSubmission(ctx context.Context, db *gorm.DB, s *domain.Submission) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// GetSubmission fetches a submission by id, returning ErrNotFound when absent.
func GetSubmission(ctx context.Context, db *gorm.DB, id uint) (*domain.Submission, error) {
	var s domain.Submission
	err := db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountSubmissions returns the total number of submissions.
func CountSubmissions(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Submission{}).Count(&total).Error
	return total, err
}

// ListSubmissionsPage returns a page of submissions ordered by creation time
// descending (newest first), with id as the tie-break for determinism.
func ListSubmissionsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Submission, error) {
	var out []domain.Submission
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateArtifact overwrites the stored certificate key and URL for a
// submission. Regeneration is idempotent-by-overwrite; prior values are
// simply replaced.
func UpdateArtifact(ctx context.Context, db *gorm.DB, id uint, key, url string) error {
	res := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"certificate_key": key,
			"certificate_url": url,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSent records a successful delivery: sent flips to true, the channel tag
// reflects the channel actually used, and sent_at is written only on the
// first false→true transition (the IS NULL guard keeps it write-once).
func MarkSent(ctx context.Context, db *gorm.DB, id uint, channel string, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Submission{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"sent":    true,
				"channel": channel,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&domain.Submission{}).
			Where("id = ? AND sent_at IS NULL", id).
			Update("sent_at", now).Error
	})
}
