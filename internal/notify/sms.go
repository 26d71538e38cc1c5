package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/tbourn/go-certificate-backend/internal/config"
)

// createMessageFn is the transport seam; tests replace it to avoid live
// gateway calls.
type createMessageFn func(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)

// SMSSender delivers certificate download links over the Twilio SMS gateway.
type SMSSender struct {
	from          string
	defaultPrefix string
	create        createMessageFn
}

// NewSMSSender constructs a sender bound to the configured Twilio account.
func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSSender{
		from:          cfg.From,
		defaultPrefix: cfg.DefaultCountryCode,
		create:        client.Api.CreateMessage,
	}
}

// SendCertificateLink texts a short greeting plus the time-limited download
// link to recipientPhone and returns the gateway message SID. The recipient
// number is normalized with the default country code when it carries no
// international prefix.
func (s *SMSSender) SendCertificateLink(ctx context.Context, recipientName, recipientPhone, linkURL string, submissionID uint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	to := NormalizePhone(recipientPhone, s.defaultPrefix)
	body := fmt.Sprintf("Hi %s! Your certificate of participation (#%d) is ready. Download it here: %s",
		recipientName, submissionID, linkURL)

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.create(params)
	if err != nil {
		return "", fmt.Errorf("sms send to %s: %w", to, err)
	}
	if resp.Sid == nil {
		return "", errors.New("sms gateway returned no message sid")
	}
	return *resp.Sid, nil
}

// NormalizePhone returns phone in international form. Numbers already
// carrying a leading "+" pass through unchanged (minus internal separators);
// bare numbers are assumed domestic and get defaultPrefix prepended.
func NormalizePhone(phone, defaultPrefix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	if cleaned == "" {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	return defaultPrefix + cleaned
}
