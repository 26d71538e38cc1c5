// Package services – SubmissionService
//
// This file implements the SubmissionService, which owns participant intake.
// It validates and normalizes registration input (name, contact details,
// optional geolocation), persists submissions, and serves lookups and
// paginated listings. Certificate fulfillment is deliberately not handled
// here; the FulfillmentService runs after intake has committed.
//
// Service-level errors (e.g., ErrEmptyName) are returned for predictable
// cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-certificate-backend/internal/domain"
	"github.com/tbourn/go-certificate-backend/internal/repo"
)

// emailRE is a light plausibility check, not an RFC 5322 validator. The relay
// is the final arbiter; this only rejects obviously broken addresses early.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// SubmissionInput carries the client-supplied fields of a registration.
// Geolocation is optional and all of its fields are independent.
type SubmissionInput struct {
	Name    string
	Email   string
	Phone   string
	Message string

	Latitude           *float64
	Longitude          *float64
	Accuracy           *float64
	City               string
	State              string
	Country            string
	CountryCode        string
	FormattedAddress   string
	LocationCapturedAt *time.Time
}

// SubmissionService provides intake-level operations: creating, fetching,
// and listing submissions. It enforces input rules but never touches the
// fulfillment state.
type SubmissionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// MaxNameRunes caps stored names by rune length.
	MaxNameRunes int
	// MaxMessageRunes caps stored messages by rune length.
	MaxMessageRunes int
}

// NewSubmissionService constructs a SubmissionService with sane input limits.
func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{
		DB:              db,
		MaxNameRunes:    120,
		MaxMessageRunes: 2000,
	}
}

// Create validates and persists a new submission. At least one contact
// channel (email or phone) is required; a registration that can never be
// delivered to is rejected with ErrNoContact.
func (s *SubmissionService) Create(ctx context.Context, in SubmissionInput) (*domain.Submission, error) {
	tr := otel.Tracer("services/SubmissionService")
	ctx, span := tr.Start(ctx, "Create")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if s.MaxNameRunes > 0 && utf8.RuneCountInString(name) > s.MaxNameRunes {
		return nil, ErrNameTooLong
	}

	email := strings.TrimSpace(in.Email)
	if email != "" && !emailRE.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	phone := strings.TrimSpace(in.Phone)

	if err := validateLocation(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	// Per-field checks first, then the cross-field rule: a submission must
	// carry at least one deliverable contact channel.
	if email == "" && phone == "" {
		return nil, ErrNoContact
	}

	msg := strings.TrimSpace(in.Message)
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(msg) > s.MaxMessageRunes {
		msg = string([]rune(msg)[:s.MaxMessageRunes])
	}

	sub := &domain.Submission{
		Name:               name,
		Email:              email,
		Phone:              phone,
		Message:            msg,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		Accuracy:           in.Accuracy,
		City:               strings.TrimSpace(in.City),
		State:              strings.TrimSpace(in.State),
		Country:            strings.TrimSpace(in.Country),
		CountryCode:        strings.TrimSpace(in.CountryCode),
		FormattedAddress:   strings.TrimSpace(in.FormattedAddress),
		LocationCapturedAt: in.LocationCapturedAt,
	}
	if err := repo.CreateSubmission(ctx, s.DB, sub); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("submission.id", int64(sub.ID)))
	return sub, nil
}

// Get fetches a submission by id.
func (s *SubmissionService) Get(ctx context.Context, id uint) (*domain.Submission, error) {
	sub, err := repo.GetSubmission(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ListPage returns a page of submissions, newest first. It applies defaults
// for invalid page/pageSize and returns the total count alongside.
func (s *SubmissionService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Submission, int64, error) {
	tr := otel.Tracer("services/SubmissionService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountSubmissions(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Submission{}, 0, nil
	}

	items, err := repo.ListSubmissionsPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// validateLocation rejects coordinates outside the valid WGS84 ranges.
// Nil coordinates are fine; each field is independently optional.
func validateLocation(lat, lon *float64) error {
	if lat != nil && (*lat < -90 || *lat > 90) {
		return ErrInvalidLocation
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return ErrInvalidLocation
	}
	return nil
}
