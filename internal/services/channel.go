// Package services – delivery channel selection.
//
// Channel selection is a pure function of the contact details present on a
// submission. It is total: any input maps to exactly one channel, and the
// pipeline makes no renderer, store, or gateway calls for ChannelNone.
package services

import (
	"strings"

	"github.com/tbourn/go-certificate-backend/internal/domain"
)

// SelectChannel picks the delivery channel for the given contact details.
// Email wins over SMS when both are present; blank or whitespace-only values
// count as absent.
func SelectChannel(email, phone string) string {
	switch {
	case strings.TrimSpace(email) != "":
		return domain.ChannelEmail
	case strings.TrimSpace(phone) != "":
		return domain.ChannelSMS
	default:
		return domain.ChannelNone
	}
}
