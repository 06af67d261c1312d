package remote

import "github.com/kmrtax/kmr-leads/internal/lead"

// Row is a lead as stored in the remote table, with snake_case columns.
// The remote schema has no status column.
type Row struct {
	ID           string `json:"id"`
	CreatedAt    string `json:"created_at"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Service      string `json:"service"`
	Notes        string `json:"notes"`
	BestContact  string `json:"best_contact"`
	ReferralCode string `json:"referral_code"`
	Language     string `json:"language"`
	Referrer     string `json:"referrer"`
	Consent      bool   `json:"consent"`
	Source       string `json:"source"`
}

// columns lists the table columns in Row field order.
var columns = []string{
	"id", "created_at", "type", "name", "email", "phone", "service", "notes",
	"best_contact", "referral_code", "language", "referrer", "consent", "source",
}

// RowFromLead maps a lead onto the remote schema.
func RowFromLead(l lead.Lead) Row {
	return Row{
		ID:           l.ID,
		CreatedAt:    l.CreatedAt,
		Type:         string(l.Type),
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Service:      string(l.Service),
		Notes:        l.Notes,
		BestContact:  string(l.BestContact),
		ReferralCode: l.ReferralCode,
		Language:     string(l.Language),
		Referrer:     l.Referrer,
		Consent:      l.Consent,
		Source:       l.Source,
	}
}

// Lead maps a remote row back to the in-memory model.
func (r Row) Lead() lead.Lead {
	return lead.Lead{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Type:         lead.Type(r.Type),
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		Service:      lead.Service(r.Service),
		Notes:        r.Notes,
		BestContact:  lead.BestContact(r.BestContact),
		Consent:      r.Consent,
		Source:       r.Source,
		ReferralCode: r.ReferralCode,
		Language:     lead.Language(r.Language),
		Referrer:     r.Referrer,
	}
}
