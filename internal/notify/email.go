// Package notify implements the delivery channels for rendered certificates:
// transactional email with the PDF attached, and SMS carrying a time-limited
// download link.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	gomail "gopkg.in/gomail.v2"

	"github.com/tbourn/go-certificate-backend/internal/config"
	"github.com/tbourn/go-certificate-backend/internal/sysutil"
)

// mailBody is the fixed HTML document personalizing name, submission id, and
// issue date. Layout is deliberately plain so it survives strict mail clients.
const mailBody = `<!DOCTYPE html>
<html>
  <body style="font-family: Helvetica, Arial, sans-serif; color: #28283c;">
    <h2>Hello {{.Name}},</h2>
    <p>Thank you for registering. Your certificate of participation is attached to this email.</p>
    <p style="color: #787878; font-size: 13px;">
      Certificate ID: {{.SubmissionID}} &middot; Issued on {{.IssueDate}}
    </p>
    <p>Warm regards,<br>{{.FromName}}</p>
  </body>
</html>`

var mailTmpl = template.Must(template.New("certificate-mail").Parse(mailBody))

// mailData feeds mailTmpl.
type mailData struct {
	Name         string
	SubmissionID uint
	IssueDate    string
	FromName     string
}

// dialFn is the transport seam; tests replace it to avoid a live SMTP relay.
type dialFn func(m *gomail.Message) error

// EmailSender delivers certificates as mail attachments over SMTP.
type EmailSender struct {
	from     string
	fromName string
	send     dialFn
}

// NewEmailSender constructs a sender bound to the configured SMTP relay.
// The dialer connects lazily on the first send and per message thereafter,
// which suits the low volume of a fulfillment backend.
func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &EmailSender{
		from:     cfg.From,
		fromName: sysutil.FirstNonEmpty(cfg.FromName, "Certificates"),
		send:     func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// SendCertificate mails the rendered certificate at attachmentPath to
// recipientEmail and returns the generated message id. Transport failures
// (auth, network, quota) surface as errors.
func (s *EmailSender) SendCertificate(ctx context.Context, recipientName, recipientEmail, attachmentPath string, submissionID uint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := renderMailBody(mailData{
		Name:         recipientName,
		SubmissionID: submissionID,
		IssueDate:    time.Now().UTC().Format("2 January 2006"),
		FromName:     s.fromName,
	})
	if err != nil {
		return "", err
	}

	msgID := fmt.Sprintf("<%s@certificates>", uuid.NewString())

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", recipientEmail, recipientName)
	m.SetHeader("Subject", fmt.Sprintf("Your certificate of participation (#%d)", submissionID))
	m.SetHeader("Message-ID", msgID)
	m.SetBody("text/html", body)
	m.Attach(attachmentPath, gomail.Rename("certificate.pdf"))

	if err := s.send(m); err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", recipientEmail, err)
	}
	return msgID, nil
}

// renderMailBody executes the fixed template; split out for testing.
func renderMailBody(d mailData) (string, error) {
	var buf bytes.Buffer
	if err := mailTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
