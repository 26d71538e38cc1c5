// Certificate HTTP handlers.
//
// This file exposes REST endpoints for the certificate fulfillment pipeline:
//   - POST /submissions/{id}/certificate           (regenerate the artifact)
//   - POST /submissions/{id}/send-email            (deliver as attachment)
//   - POST /submissions/{id}/send-sms              (deliver a download link)
//   - GET  /submissions/{id}/certificate/download  (stream the PDF)
//
// Handlers are transport-thin: they parse the id, delegate to the
// FulfillmentService, and map the pipeline's failure kinds onto HTTP statuses
// (render → 500, storage/delivery → 502, missing → 404).
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certificate-backend/internal/services"
)

// failFulfillment maps pipeline errors onto HTTP statuses and stable codes.
func failFulfillment(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSubmissionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "submission not found")
	case errors.Is(err, services.ErrCertificateNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "certificate not found")
	case errors.Is(err, services.ErrNoEmail), errors.Is(err, services.ErrNoPhone):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrRender):
		fail(c, http.StatusInternalServerError, ErrCodeRenderFailed, err.Error())
	case errors.Is(err, services.ErrStorage):
		fail(c, http.StatusBadGateway, ErrCodeStorageFailed, err.Error())
	case errors.Is(err, services.ErrDelivery):
		fail(c, http.StatusBadGateway, ErrCodeDeliveryFailed, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// deliveryResult converts a pipeline result into the response DTO.
func deliveryResult(res *services.Result) *DeliveryResult {
	return &DeliveryResult{
		Channel:   res.Channel,
		Sent:      res.Sent,
		MessageID: res.MessageID,
		Reused:    res.Reused,
	}
}

// RegenerateCertificate godoc
// @ID          regenerateCertificate
// @Summary     Regenerate the certificate artifact
// @Description Unconditionally renders a fresh PDF and replaces the stored artifact. No delivery is attempted.
// @Tags        Certificates
// @Produce     json
//
// @Param       id  path  int  true  "Submission ID"  minimum(1)
//
// @Success     200  {object} handlers.SubmissionResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Submission not found"
// @Failure     500  {object} handlers.ErrorResponse "Render failed"
// @Failure     502  {object} handlers.ErrorResponse "Storage failed"
// @Router      /submissions/{id}/certificate [post]
func (h *Handlers) RegenerateCertificate(c *gin.Context) {
	id, okID := submissionID(c)
	if !okID {
		return
	}

	sub, err := h.fulfillSvc.Regenerate(c.Request.Context(), id)
	if err != nil {
		failFulfillment(c, err)
		return
	}
	ok(c, http.StatusOK, SubmissionResponse{Submission: sub})
}

// SendCertificateEmail godoc
// @ID          sendCertificateEmail
// @Summary     Email the certificate
// @Description Ensures the artifact exists (reusing the stored copy when present) and mails it as an attachment.
// @Tags        Certificates
// @Produce     json
//
// @Param       id  path  int  true  "Submission ID"  minimum(1)
//
// @Success     200  {object} handlers.DeliveryResult
// @Failure     400  {object} handlers.ErrorResponse "No email on record"
// @Failure     404  {object} handlers.ErrorResponse "Submission not found"
// @Failure     500  {object} handlers.ErrorResponse "Render failed"
// @Failure     502  {object} handlers.ErrorResponse "Storage or delivery failed"
// @Router      /submissions/{id}/send-email [post]
func (h *Handlers) SendCertificateEmail(c *gin.Context) {
	id, okID := submissionID(c)
	if !okID {
		return
	}

	res, err := h.fulfillSvc.SendEmail(c.Request.Context(), id)
	if err != nil {
		failFulfillment(c, err)
		return
	}
	ok(c, http.StatusOK, deliveryResult(res))
}

// SendCertificateSMS godoc
// @ID          sendCertificateSMS
// @Summary     Text a certificate download link
// @Description Ensures the artifact exists and texts a time-limited presigned download link.
// @Tags        Certificates
// @Produce     json
//
// @Param       id  path  int  true  "Submission ID"  minimum(1)
//
// @Success     200  {object} handlers.DeliveryResult
// @Failure     400  {object} handlers.ErrorResponse "No phone on record"
// @Failure     404  {object} handlers.ErrorResponse "Submission not found"
// @Failure     500  {object} handlers.ErrorResponse "Render failed"
// @Failure     502  {object} handlers.ErrorResponse "Storage or delivery failed"
// @Router      /submissions/{id}/send-sms [post]
func (h *Handlers) SendCertificateSMS(c *gin.Context) {
	id, okID := submissionID(c)
	if !okID {
		return
	}

	res, err := h.fulfillSvc.SendSMS(c.Request.Context(), id)
	if err != nil {
		failFulfillment(c, err)
		return
	}
	ok(c, http.StatusOK, deliveryResult(res))
}

// DownloadCertificate godoc
// @ID          downloadCertificate
// @Summary     Download the certificate PDF
// @Description Streams the stored certificate artifact for the submission.
// @Tags        Certificates
// @Produce     application/pdf
//
// @Param       id  path  int  true  "Submission ID"  minimum(1)
//
// @Success     200  {file}   file "Certificate PDF"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Certificate not found"
// @Failure     502  {object} handlers.ErrorResponse "Storage failed"
// @Router      /submissions/{id}/certificate/download [get]
func (h *Handlers) DownloadCertificate(c *gin.Context) {
	id, okID := submissionID(c)
	if !okID {
		return
	}

	rc, size, err := h.fulfillSvc.Download(c.Request.Context(), id)
	if err != nil {
		failFulfillment(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="certificate-%d.pdf"`, id),
	})
}
