// Package domain defines the persistence models for participant submissions
// and their certificate fulfillment state. These types are mapped with GORM
// and form the core data layer of the application.
package domain

import "time"

// Delivery channel tags recorded on a submission after a successful send.
// An empty string means no delivery has been attempted yet.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelNone  = "none"
)

// Submission represents one participant registration together with its
// certificate fulfillment state. The client supplies name, contact info and
// optional geolocation; the fulfillment fields are mutated only by the
// orchestrator, never by intake.
//
// Invariants:
//   - ID is assigned once by the store and never reused.
//   - Sent is monotonic: false→true only, never reset.
//   - SentAt is written exactly once, on the false→true transition.
//   - CertificateKey/URL may be overwritten by regeneration (overwrite, not
//     append).
type Submission struct {
	ID uint `json:"id" gorm:"primaryKey;autoIncrement"`

	// Intake fields (client-supplied).
	Name    string `json:"name"    gorm:"type:varchar(255);not null"`
	Email   string `json:"email"   gorm:"type:varchar(255);index"`
	Phone   string `json:"phone"   gorm:"type:varchar(32);index"`
	Message string `json:"message" gorm:"type:text"`

	// Geolocation capture. All fields independent and optional; nullable
	// columns so schema changes stay additive.
	Latitude           *float64   `json:"latitude,omitempty"`
	Longitude          *float64   `json:"longitude,omitempty"`
	Accuracy           *float64   `json:"accuracy,omitempty"`
	City               string     `json:"city,omitempty"              gorm:"type:varchar(128)"`
	State              string     `json:"state,omitempty"             gorm:"type:varchar(128)"`
	Country            string     `json:"country,omitempty"           gorm:"type:varchar(128)"`
	CountryCode        string     `json:"country_code,omitempty"      gorm:"type:varchar(8)"`
	FormattedAddress   string     `json:"formatted_address,omitempty" gorm:"type:text"`
	LocationCapturedAt *time.Time `json:"location_captured_at,omitempty"`

	// Fulfillment state (orchestrator-owned).
	CertificateKey string     `json:"certificate_key,omitempty" gorm:"type:varchar(255);index"`
	CertificateURL string     `json:"certificate_url,omitempty" gorm:"type:text"`
	Sent           bool       `json:"sent"                      gorm:"not null;default:false"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	Channel        string     `json:"channel,omitempty"         gorm:"type:varchar(8)"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Submission.
func (Submission) TableName() string { return "submissions" }

// HasContact reports whether at least one delivery contact is present.
func (s *Submission) HasContact() bool {
	return s.Email != "" || s.Phone != ""
}
