// Package services – FulfillmentService
//
// This file implements the FulfillmentService, the orchestrator that turns a
// persisted submission into a delivered certificate. The pipeline is:
//
//  1. Select the delivery channel from the contact details (email wins over
//     SMS; no contact means no pipeline work at all).
//  2. Ensure the PDF artifact exists in the blob store, rendering and
//     uploading only when the stored copy is absent.
//  3. Persist the artifact key and URL before any notification attempt, so a
//     failed send leaves a resumable record.
//  4. Notify via the chosen channel and mark the submission sent afterwards.
//
// Failures are wrapped in StepError with a kind (ErrRender, ErrStorage,
// ErrDelivery) so handlers can classify them without string matching.
//
// Observability: public methods are OpenTelemetry-instrumented and pipeline
// outcomes feed the Prometheus collectors in metrics.go.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-certificate-backend/internal/cert"
	"github.com/tbourn/go-certificate-backend/internal/domain"
	"github.com/tbourn/go-certificate-backend/internal/repo"
)

// Renderer produces a certificate PDF on local disk and returns its path.
// The caller owns the file and removes it when done.
type Renderer interface {
	Render(ctx context.Context, d cert.Data) (string, error)
}

// ArtifactStore is the blob-store contract required by the orchestrator.
type ArtifactStore interface {
	// Put uploads the file at path under key and returns its canonical URL.
	Put(ctx context.Context, key, path, contentType string) (string, error)

	// Exists reports whether key is present; absence is not an error.
	Exists(ctx context.Context, key string) (bool, error)

	// Fetch downloads the object at key into the local file at path.
	Fetch(ctx context.Context, key, path string) error

	// Get returns a reader over the object at key together with its size.
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// PresignURL returns a time-limited public download link for key.
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Remove deletes the object at key.
	Remove(ctx context.Context, key string) error
}

// EmailNotifier delivers a certificate as a mail attachment.
type EmailNotifier interface {
	SendCertificate(ctx context.Context, recipientName, recipientEmail, attachmentPath string, submissionID uint) (string, error)
}

// SMSNotifier delivers a certificate download link by text message.
type SMSNotifier interface {
	SendCertificateLink(ctx context.Context, recipientName, recipientPhone, linkURL string, submissionID uint) (string, error)
}

// Result reports what a pipeline run produced.
type Result struct {
	SubmissionID   uint   `json:"submission_id"`
	Channel        string `json:"channel"`
	CertificateKey string `json:"certificate_key,omitempty"`
	CertificateURL string `json:"certificate_url,omitempty"`
	// MessageID is the mail Message-ID or the SMS gateway SID.
	MessageID string `json:"message_id,omitempty"`
	Sent      bool   `json:"sent"`
	// Reused is true when the stored artifact was still present and no
	// rendering took place.
	Reused bool `json:"reused"`
}

// FulfillmentService coordinates rendering, storage, and delivery of
// certificates for persisted submissions.
type FulfillmentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	Renderer Renderer
	Store    ArtifactStore
	Email    EmailNotifier
	SMS      SMSNotifier

	// LinkTTL bounds the lifetime of presigned SMS download links.
	LinkTTL time.Duration
}

// NewFulfillmentService constructs a FulfillmentService with a default link
// lifetime of one hour.
func NewFulfillmentService(db *gorm.DB, r Renderer, store ArtifactStore, email EmailNotifier, sms SMSNotifier) *FulfillmentService {
	return &FulfillmentService{
		DB:       db,
		Renderer: r,
		Store:    store,
		Email:    email,
		SMS:      sms,
		LinkTTL:  time.Hour,
	}
}

// Fulfill runs the full pipeline for a submission: channel selection,
// artifact ensure, delivery, and sent bookkeeping. A submission without any
// contact details short-circuits before touching the renderer or the store.
func (s *FulfillmentService) Fulfill(ctx context.Context, id uint) (res *Result, err error) {
	tr := otel.Tracer("services/FulfillmentService")
	ctx, span := tr.Start(ctx, "Fulfill",
		trace.WithAttributes(attribute.Int64("submission.id", int64(id))),
	)
	defer span.End()

	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}

	channel := SelectChannel(sub.Email, sub.Phone)
	span.SetAttributes(attribute.String("fulfillment.channel", channel))
	defer func() { observeOutcome(channel, err) }()

	if channel == domain.ChannelNone {
		log.Warn().Uint("submission_id", sub.ID).
			Msg("submission has no contact details; certificate not generated")
		return &Result{SubmissionID: sub.ID, Channel: channel}, nil
	}

	tempPath, reused, err := s.ensureArtifact(ctx, sub, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		if tempPath != "" {
			_ = os.Remove(tempPath)
		}
	}()

	var msgID string
	switch channel {
	case domain.ChannelEmail:
		msgID, err = s.deliverEmail(ctx, sub, tempPath)
	case domain.ChannelSMS:
		msgID, err = s.deliverSMS(ctx, sub)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		SubmissionID:   sub.ID,
		Channel:        channel,
		CertificateKey: sub.CertificateKey,
		CertificateURL: sub.CertificateURL,
		MessageID:      msgID,
		Sent:           true,
		Reused:         reused,
	}, nil
}

// Regenerate unconditionally renders a fresh artifact for the submission,
// replacing any stored key/URL. The superseded blob is deleted once the new
// pointer is persisted; a failed delete only orphans an object, so it is
// logged and not propagated. No delivery is attempted.
func (s *FulfillmentService) Regenerate(ctx context.Context, id uint) (*domain.Submission, error) {
	tr := otel.Tracer("services/FulfillmentService")
	ctx, span := tr.Start(ctx, "Regenerate",
		trace.WithAttributes(attribute.Int64("submission.id", int64(id))),
	)
	defer span.End()

	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	oldKey := sub.CertificateKey
	tempPath, _, err := s.ensureArtifact(ctx, sub, true)
	if err != nil {
		return nil, err
	}
	if tempPath != "" {
		_ = os.Remove(tempPath)
	}
	if oldKey != "" && oldKey != sub.CertificateKey {
		if rerr := s.Store.Remove(ctx, oldKey); rerr != nil {
			log.Warn().Err(rerr).Uint("submission_id", sub.ID).Str("key", oldKey).
				Msg("could not delete superseded certificate artifact")
		}
	}
	return sub, nil
}

// SendEmail delivers the certificate to the submission's email address,
// ensuring the artifact first. Submissions without an email are rejected.
func (s *FulfillmentService) SendEmail(ctx context.Context, id uint) (res *Result, err error) {
	tr := otel.Tracer("services/FulfillmentService")
	ctx, span := tr.Start(ctx, "SendEmail",
		trace.WithAttributes(attribute.Int64("submission.id", int64(id))),
	)
	defer span.End()
	defer func() { observeOutcome(domain.ChannelEmail, err) }()

	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub.Email) == "" {
		return nil, ErrNoEmail
	}

	tempPath, reused, err := s.ensureArtifact(ctx, sub, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		if tempPath != "" {
			_ = os.Remove(tempPath)
		}
	}()

	msgID, err := s.deliverEmail(ctx, sub, tempPath)
	if err != nil {
		return nil, err
	}
	return &Result{
		SubmissionID:   sub.ID,
		Channel:        domain.ChannelEmail,
		CertificateKey: sub.CertificateKey,
		CertificateURL: sub.CertificateURL,
		MessageID:      msgID,
		Sent:           true,
		Reused:         reused,
	}, nil
}

// SendSMS delivers a time-limited download link to the submission's phone
// number, ensuring the artifact first. Submissions without a phone are
// rejected.
func (s *FulfillmentService) SendSMS(ctx context.Context, id uint) (res *Result, err error) {
	tr := otel.Tracer("services/FulfillmentService")
	ctx, span := tr.Start(ctx, "SendSMS",
		trace.WithAttributes(attribute.Int64("submission.id", int64(id))),
	)
	defer span.End()
	defer func() { observeOutcome(domain.ChannelSMS, err) }()

	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub.Phone) == "" {
		return nil, ErrNoPhone
	}

	tempPath, reused, err := s.ensureArtifact(ctx, sub, false)
	if err != nil {
		return nil, err
	}
	if tempPath != "" {
		// SMS sends a link, not the file itself.
		_ = os.Remove(tempPath)
	}

	sid, err := s.deliverSMS(ctx, sub)
	if err != nil {
		return nil, err
	}
	return &Result{
		SubmissionID:   sub.ID,
		Channel:        domain.ChannelSMS,
		CertificateKey: sub.CertificateKey,
		CertificateURL: sub.CertificateURL,
		MessageID:      sid,
		Sent:           true,
		Reused:         reused,
	}, nil
}

// Download streams the stored certificate for a submission. The caller
// closes the reader.
func (s *FulfillmentService) Download(ctx context.Context, id uint) (io.ReadCloser, int64, error) {
	tr := otel.Tracer("services/FulfillmentService")
	ctx, span := tr.Start(ctx, "Download",
		trace.WithAttributes(attribute.Int64("submission.id", int64(id))),
	)
	defer span.End()

	sub, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if sub.CertificateKey == "" {
		return nil, 0, ErrCertificateNotFound
	}
	ok, err := s.Store.Exists(ctx, sub.CertificateKey)
	if err != nil {
		return nil, 0, stepErr("check", ErrStorage, sub.ID, err)
	}
	if !ok {
		return nil, 0, ErrCertificateNotFound
	}
	rc, size, err := s.Store.Get(ctx, sub.CertificateKey)
	if err != nil {
		return nil, 0, stepErr("fetch", ErrStorage, sub.ID, err)
	}
	return rc, size, nil
}

// ensureArtifact guarantees a certificate PDF exists in the store for sub.
// When force is false and the stored copy is still present, nothing is
// rendered and tempPath is empty. Otherwise it renders, uploads under a
// fresh key, and persists the new key/URL on the submission before
// returning; tempPath then points at the local render, owned by the caller.
func (s *FulfillmentService) ensureArtifact(ctx context.Context, sub *domain.Submission, force bool) (tempPath string, reused bool, err error) {
	if !force && sub.CertificateKey != "" {
		ok, cerr := s.Store.Exists(ctx, sub.CertificateKey)
		if cerr != nil {
			return "", false, stepErr("check", ErrStorage, sub.ID, cerr)
		}
		if ok {
			artifactReuses.Inc()
			return "", true, nil
		}
	}

	start := time.Now()
	path, rerr := s.Renderer.Render(ctx, cert.Data{
		Name:         sub.Name,
		SubmissionID: sub.ID,
		IssuedAt:     sub.CreatedAt,
	})
	if rerr != nil {
		return "", false, stepErr("render", ErrRender, sub.ID, rerr)
	}
	renderSeconds.Observe(time.Since(start).Seconds())

	// Unix-nano suffix keeps regenerated artifacts from colliding with
	// presigned links that may still reference the previous key.
	key := fmt.Sprintf("certificates/%d-%d.pdf", sub.ID, time.Now().UnixNano())
	url, perr := s.Store.Put(ctx, key, path, "application/pdf")
	if perr != nil {
		_ = os.Remove(path)
		return "", false, stepErr("upload", ErrStorage, sub.ID, perr)
	}

	// Persist the pointer before any notification so a failed send leaves a
	// record that later sends can reuse.
	if uerr := repo.UpdateArtifact(ctx, s.DB, sub.ID, key, url); uerr != nil {
		_ = os.Remove(path)
		return "", false, fmt.Errorf("persist artifact for submission %d: %w", sub.ID, uerr)
	}
	sub.CertificateKey = key
	sub.CertificateURL = url
	return path, false, nil
}

// deliverEmail sends the certificate as an attachment and records the send.
// localPath may already hold the rendered file; when it is empty the stored
// artifact is fetched into a temporary file first.
func (s *FulfillmentService) deliverEmail(ctx context.Context, sub *domain.Submission, localPath string) (string, error) {
	path := localPath
	if path == "" {
		f, err := os.CreateTemp("", fmt.Sprintf("certificate-%d-*.pdf", sub.ID))
		if err != nil {
			return "", stepErr("fetch", ErrStorage, sub.ID, err)
		}
		path = f.Name()
		_ = f.Close()
		defer os.Remove(path)
		if err := s.Store.Fetch(ctx, sub.CertificateKey, path); err != nil {
			return "", stepErr("fetch", ErrStorage, sub.ID, err)
		}
	}

	msgID, err := s.Email.SendCertificate(ctx, sub.Name, sub.Email, path, sub.ID)
	if err != nil {
		deliveryFailures.WithLabelValues(domain.ChannelEmail, "email").Inc()
		return "", stepErr("email", ErrDelivery, sub.ID, err)
	}
	if err := repo.MarkSent(ctx, s.DB, sub.ID, domain.ChannelEmail, time.Now().UTC()); err != nil {
		// The mail went out; only the bookkeeping failed.
		return msgID, fmt.Errorf("record email delivery for submission %d: %w", sub.ID, err)
	}
	return msgID, nil
}

// deliverSMS presigns a download link, texts it, and records the send.
func (s *FulfillmentService) deliverSMS(ctx context.Context, sub *domain.Submission) (string, error) {
	link, err := s.Store.PresignURL(ctx, sub.CertificateKey, s.linkTTL())
	if err != nil {
		return "", stepErr("presign", ErrStorage, sub.ID, err)
	}
	sid, err := s.SMS.SendCertificateLink(ctx, sub.Name, sub.Phone, link, sub.ID)
	if err != nil {
		deliveryFailures.WithLabelValues(domain.ChannelSMS, "sms").Inc()
		return "", stepErr("sms", ErrDelivery, sub.ID, err)
	}
	if err := repo.MarkSent(ctx, s.DB, sub.ID, domain.ChannelSMS, time.Now().UTC()); err != nil {
		return sid, fmt.Errorf("record sms delivery for submission %d: %w", sub.ID, err)
	}
	return sid, nil
}

// linkTTL returns the configured presigned-link lifetime or one hour.
func (s *FulfillmentService) linkTTL() time.Duration {
	if s.LinkTTL > 0 {
		return s.LinkTTL
	}
	return time.Hour
}

// getSubmission maps the repo's not-found to the service-level sentinel.
func (s *FulfillmentService) getSubmission(ctx context.Context, id uint) (*domain.Submission, error) {
	sub, err := repo.GetSubmission(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}
