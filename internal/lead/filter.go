package lead

import (
	"encoding/json"
	"strings"
)

// Stats are the dashboard counters shown above the lead table.
type Stats struct {
	Total     int
	Tax       int
	Referrals int
}

// Filter keeps the leads whose JSON form contains query, ignoring case.
// An empty query returns leads unchanged.
func Filter(leads []Lead, query string) []Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return leads
	}

	out := make([]Lead, 0, len(leads))
	for _, l := range leads {
		raw, err := json.Marshal(l)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(raw)), q) {
			out = append(out, l)
		}
	}
	return out
}

// Summarize counts all leads, tax-service leads and referrals.
func Summarize(leads []Lead) Stats {
	s := Stats{Total: len(leads)}
	for _, l := range leads {
		if l.Service == ServiceTax {
			s.Tax++
		}
		if l.Type == TypeReferral {
			s.Referrals++
		}
	}
	return s
}
