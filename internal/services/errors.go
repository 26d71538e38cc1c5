// Package services defines the business logic for submissions and certificate
// fulfillment. This file centralizes the service-level error values and the
// StepError wrapper so that callers can classify failures consistently.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer; the service layer only reports what failed and where.
package services

import (
	"errors"
	"fmt"
)

// Validation and lookup errors.
var (
	// ErrSubmissionNotFound indicates that the requested submission does not
	// exist.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrCertificateNotFound indicates that the submission exists but no
	// certificate artifact has been produced for it yet.
	ErrCertificateNotFound = errors.New("certificate not found")

	// ErrEmptyName is returned when a submission carries no participant name.
	ErrEmptyName = errors.New("name is empty")

	// ErrNameTooLong is returned when the participant name exceeds the
	// configured rune limit.
	ErrNameTooLong = errors.New("name too long")

	// ErrInvalidEmail is returned when the supplied email address is not
	// plausibly deliverable.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidLocation is returned when geolocation coordinates fall outside
	// the valid latitude/longitude ranges.
	ErrInvalidLocation = errors.New("invalid geolocation coordinates")

	// ErrNoContact is returned when a submission carries neither an email
	// address nor a phone number. Intake requires at least one channel so
	// every accepted registration can be delivered to.
	ErrNoContact = errors.New("submission has no contact details")

	// ErrNoEmail is returned when email delivery is requested for a submission
	// that has no email address on record.
	ErrNoEmail = errors.New("submission has no email address")

	// ErrNoPhone is returned when SMS delivery is requested for a submission
	// that has no phone number on record.
	ErrNoPhone = errors.New("submission has no phone number")
)

// Failure kinds for the fulfillment pipeline. A StepError wraps exactly one
// of these, so errors.Is(err, ErrStorage) etc. classifies any pipeline error.
var (
	// ErrRender indicates the PDF renderer failed to produce an artifact.
	ErrRender = errors.New("certificate rendering failed")

	// ErrStorage indicates the blob store rejected an upload, download,
	// existence check, or link signing request.
	ErrStorage = errors.New("certificate storage failed")

	// ErrDelivery indicates the email relay or SMS gateway rejected the
	// notification after the artifact was already persisted.
	ErrDelivery = errors.New("certificate delivery failed")
)

// StepError records which pipeline step failed for which submission. It
// unwraps to both its failure kind and the underlying cause, so callers can
// match either with errors.Is/As.
type StepError struct {
	// Step names the pipeline stage: "render", "upload", "check", "fetch",
	// "presign", "email", or "sms".
	Step string
	// Kind is one of ErrRender, ErrStorage, ErrDelivery.
	Kind error
	// SubmissionID identifies the affected submission.
	SubmissionID uint
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("fulfillment %s failed for submission %d: %v", e.Step, e.SubmissionID, e.Err)
}

// Unwrap exposes both the failure kind and the cause to errors.Is/As.
func (e *StepError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// stepErr builds a StepError for the given stage.
func stepErr(step string, kind error, submissionID uint, err error) error {
	return &StepError{Step: step, Kind: kind, SubmissionID: submissionID, Err: err}
}
