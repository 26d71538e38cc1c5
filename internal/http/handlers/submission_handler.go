// Submission HTTP handlers.
//
// This file exposes REST endpoints for submission resources:
//   - POST /submissions        (create and trigger certificate fulfillment)
//   - GET  /submissions        (list, paginated, ETag support)
//   - GET  /submissions/{id}   (fetch one)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// intake exists for that key, the handler returns the recorded submission and
// sets `Idempotency-Replayed: true` instead of creating a duplicate.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-certificate-backend/internal/domain"
	"github.com/tbourn/go-certificate-backend/internal/http/middleware"
	"github.com/tbourn/go-certificate-backend/internal/repo"
	"github.com/tbourn/go-certificate-backend/internal/services"
	"github.com/tbourn/go-certificate-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SubmissionService defines intake operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SubmissionService interface {
	// Create validates and persists a new submission.
	Create(ctx context.Context, in services.SubmissionInput) (*domain.Submission, error)
	// Get fetches a submission by id.
	Get(ctx context.Context, id uint) (*domain.Submission, error)
	// ListPage returns a page of submissions and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Submission, int64, error)
}

// FulfillmentService defines the certificate pipeline operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type FulfillmentService interface {
	// Fulfill runs the full pipeline: channel selection, artifact, delivery.
	Fulfill(ctx context.Context, id uint) (*services.Result, error)
	// Regenerate renders a fresh artifact without delivering it.
	Regenerate(ctx context.Context, id uint) (*domain.Submission, error)
	// SendEmail delivers the certificate as a mail attachment.
	SendEmail(ctx context.Context, id uint) (*services.Result, error)
	// SendSMS delivers a time-limited download link by text message.
	SendSMS(ctx context.Context, id uint) (*services.Result, error)
	// Download streams the stored certificate PDF.
	Download(ctx context.Context, id uint) (io.ReadCloser, int64, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for submissions and certificate fulfillment.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	subSvc     SubmissionService
	fulfillSvc FulfillmentService

	// IdempotencyTTL bounds how long intake replays are honored.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(subSvc SubmissionService, fulfillSvc FulfillmentService, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{subSvc: subSvc, fulfillSvc: fulfillSvc, IdempotencyTTL: idemTTL}
}

//
// DTOs
//

// CreateSubmissionRequest is the JSON payload for registering a participant.
// At least one of Email and Phone must be present.
type CreateSubmissionRequest struct {
	// Name is the participant's full name as it should appear on the certificate.
	Name string `json:"name" binding:"required,min=1,max=255" example:"Asha Rao"`
	// Email, when present, selects email delivery with the PDF attached.
	Email string `json:"email" example:"asha@example.com"`
	// Phone, when present (and no email), selects SMS delivery of a download link.
	Phone string `json:"phone" example:"+919876543210"`
	// Message is an optional free-text note from the participant.
	Message string `json:"message" example:"Loved the workshop!"`

	// Optional geolocation capture; every field is independent.
	Latitude           *float64   `json:"latitude,omitempty" example:"48.8584"`
	Longitude          *float64   `json:"longitude,omitempty" example:"2.2945"`
	Accuracy           *float64   `json:"accuracy,omitempty" example:"12.5"`
	City               string     `json:"city,omitempty" example:"Paris"`
	State              string     `json:"state,omitempty" example:"Île-de-France"`
	Country            string     `json:"country,omitempty" example:"France"`
	CountryCode        string     `json:"country_code,omitempty" example:"FR"`
	FormattedAddress   string     `json:"formatted_address,omitempty"`
	LocationCapturedAt *time.Time `json:"location_captured_at,omitempty"`
}

// DeliveryResult reports what the fulfillment pipeline did (or failed to do)
// for a freshly created submission. Errors here do not fail the intake; the
// submission is already persisted.
type DeliveryResult struct {
	Channel   string `json:"channel"`
	Sent      bool   `json:"sent"`
	MessageID string `json:"message_id,omitempty"`
	Reused    bool   `json:"reused,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SubmissionResponse wraps a single submission, optionally with the delivery
// outcome of the intake-triggered fulfillment run.
type SubmissionResponse struct {
	Submission *domain.Submission `json:"submission"`
	Delivery   *DeliveryResult    `json:"delivery,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSubmissionsResponse wraps a page of submissions and pagination info.
type ListSubmissionsResponse struct {
	Submissions []domain.Submission `json:"submissions"`
	Pagination  Pagination          `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// submissionID parses the :id path parameter as a positive integer.
func submissionID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "submission id must be a positive integer")
		return 0, false
	}
	return uint(v), true
}

// idempotencyKey extracts a validated idempotency key if an upstream middleware
// has already stashed it, falling back to the raw header when no dedicated
// middleware ran (tests use this path).
func idempotencyKey(c *gin.Context) string {
	if key, ok := middleware.GetIdempotencyKey(c); ok {
		return key
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// serviceDB exposes the intake service's DB handle for ETag and idempotency
// bookkeeping (best effort; nil when a fake service is injected).
func (h *Handlers) serviceDB() *gorm.DB {
	if svc, ok := h.subSvc.(*services.SubmissionService); ok {
		return svc.DB
	}
	return nil
}

// failIntake maps intake validation errors to HTTP responses.
func failIntake(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyName),
		errors.Is(err, services.ErrNameTooLong),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidLocation),
		errors.Is(err, services.ErrNoContact):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
	}
}

//
// Handlers
//

// CreateSubmission godoc
// @ID          createSubmission
// @Summary     Register a participant
// @Description Persists the submission and triggers certificate fulfillment over the best available channel (email wins over SMS).
// @Description Supports idempotency via the Idempotency-Key header (same key → same submission).
// @Description A delivery failure does not fail the request; it is reported in the `delivery.error` field.
// @Tags        Submissions
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateSubmissionRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.SubmissionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /submissions [post]
func (h *Handlers) CreateSubmission(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required (1-255 chars)")
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.serviceDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := h.subSvc.Get(ctx, rec.SubmissionID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, rec.Status, SubmissionResponse{Submission: prev})
					return
				}
			}
		}
	}

	sub, err := h.subSvc.Create(ctx, services.SubmissionInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Message:            req.Message,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Accuracy:           req.Accuracy,
		City:               req.City,
		State:              req.State,
		Country:            req.Country,
		CountryCode:        req.CountryCode,
		FormattedAddress:   req.FormattedAddress,
		LocationCapturedAt: req.LocationCapturedAt,
	})
	if err != nil {
		failIntake(c, err)
		return
	}

	// Fulfillment runs after intake has committed; its failure is reported,
	// never propagated as a request failure.
	delivery := &DeliveryResult{Channel: services.SelectChannel(sub.Email, sub.Phone)}
	if res, ferr := h.fulfillSvc.Fulfill(ctx, sub.ID); ferr != nil {
		delivery.Error = ferr.Error()
	} else {
		delivery.Channel = res.Channel
		delivery.Sent = res.Sent
		delivery.MessageID = res.MessageID
		delivery.Reused = res.Reused
	}
	// Re-read so the response reflects the fulfillment state just written.
	if fresh, err := h.subSvc.Get(ctx, sub.ID); err == nil {
		sub = fresh
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if db := h.serviceDB(); db != nil {
			_, _ = repo.CreateIdempotency(ctx, db, idemKey, sub.ID, http.StatusCreated, h.IdempotencyTTL)
		}
	}

	ok(c, http.StatusCreated, SubmissionResponse{Submission: sub, Delivery: delivery})
}

// ListSubmissions godoc
// @ID          listSubmissions
// @Summary     List submissions (paginated)
// @Description Returns a page of submissions, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Submissions
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListSubmissionsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /submissions [get]
func (h *Handlers) ListSubmissions(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if db := h.serviceDB(); db != nil {
		count, maxTS, err := repo.SubmissionsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"submissions:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.subSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListSubmissionsResponse{
		Submissions: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetSubmission godoc
// @ID          getSubmission
// @Summary     Fetch a submission
// @Description Returns a single submission with its fulfillment state.
// @Tags        Submissions
// @Produce     json
//
// @Param       id  path  int  true  "Submission ID"  minimum(1)
//
// @Success     200  {object} handlers.SubmissionResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Submission not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /submissions/{id} [get]
func (h *Handlers) GetSubmission(c *gin.Context) {
	id, okID := submissionID(c)
	if !okID {
		return
	}

	sub, err := h.subSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "submission not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SubmissionResponse{Submission: sub})
}
