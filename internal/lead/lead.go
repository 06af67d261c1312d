// Package lead defines the lead record shared by every layer: local store,
// remote gateway, reconciler and exports.
package lead

import (
	"time"

	"github.com/kmrtax/kmr-leads/internal/config"
)

// Type distinguishes a direct request from a referral submitted on someone's behalf.
type Type string

const (
	TypeLead     Type = "lead"
	TypeReferral Type = "referral"
)

// Service is an entry of the service catalog offered on the intake form.
type Service string

const (
	ServiceTax     Service = "tax"
	ServiceBook    Service = "book"
	ServicePayroll Service = "payroll"
	ServiceITIN    Service = "itin"
	ServiceBiz     Service = "biz"
	ServiceAudit   Service = "audit"
	ServiceAmend   Service = "amend"
	ServiceOther   Service = "other"
)

// Services lists the catalog in display order.
var Services = []Service{
	ServiceTax, ServiceBook, ServicePayroll, ServiceITIN,
	ServiceBiz, ServiceAudit, ServiceAmend, ServiceOther,
}

// BestContact is the preferred contact channel. Empty means no preference.
type BestContact string

const (
	ContactNone  BestContact = ""
	ContactCall  BestContact = "call"
	ContactText  BestContact = "text"
	ContactEmail BestContact = "email"
)

// Language is the language the lead was captured in.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHaitian Language = "ht"
)

// Lead is a prospective-client record.
//
// Values decoded from JSON or remote rows are carried as-is; the enum types are
// only checked when a lead is created through New or NewReferral. CreatedAt keeps
// the original string so unparseable timestamps survive a round trip.
type Lead struct {
	ID           string      `json:"id"`
	CreatedAt    string      `json:"createdAt"`
	Type         Type        `json:"type"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Service      Service     `json:"service"`
	Notes        string      `json:"notes"`
	BestContact  BestContact `json:"bestContact"`
	Consent      bool        `json:"consent"`
	Source       string      `json:"source"`
	ReferralCode string      `json:"referralCode"`
	Language     Language    `json:"language"`
	Referrer     string      `json:"referrer"`
	Status       string      `json:"status,omitempty"`
}

// StatusOrDefault returns the status, or "new" when none was recorded.
func (l Lead) StatusOrDefault() string {
	if l.Status == "" {
		return config.DefaultStatus
	}
	return l.Status
}

// Created parses CreatedAt. ok is false when the value is missing or unparseable.
func (l Lead) Created() (time.Time, bool) {
	return ParseTimestamp(l.CreatedAt)
}

// CreatedMillis returns CreatedAt in Unix milliseconds, 0 when unparseable.
func (l Lead) CreatedMillis() int64 {
	t, ok := l.Created()
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// timestampLayouts are tried in order; the first one accepts FormatTimestamp output.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	config.DateLayout,
}

// ParseTimestamp parses an ISO-8601 timestamp as written by browsers and Postgres.
// Values without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way Date.toISOString does (UTC, millisecond precision).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(config.TimestampLayout)
}
