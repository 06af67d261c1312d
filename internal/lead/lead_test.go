package lead_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kmrtax/kmr-leads/internal/lead"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 11, 4, 12, 30, 45, 123456789, time.UTC)

func TestNew_Valid(t *testing.T) {
	l, err := lead.New(lead.Input{
		Name:        "  Marie Joseph ",
		Phone:       "(305) 555-0101",
		Service:     lead.ServiceTax,
		Email:       "marie@example.com",
		BestContact: lead.ContactText,
		Consent:     true,
		Language:    "ht",
	}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "2025-11-04T12:30:45.123Z", l.CreatedAt)
	assert.Equal(t, lead.TypeLead, l.Type)
	assert.Equal(t, "Marie Joseph", l.Name)
	assert.Equal(t, lead.LanguageHaitian, l.Language)
	assert.Equal(t, "new", l.StatusOrDefault())
}

func TestNew_FreshIDs(t *testing.T) {
	in := lead.Input{Name: "A", Phone: "1", Service: lead.ServiceBook}
	a, err := lead.New(in, now)
	require.NoError(t, err)
	b, err := lead.New(in, now)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNew_Invalid(t *testing.T) {
	base := lead.Input{Name: "A", Phone: "1", Service: lead.ServiceTax}

	tests := []struct {
		name   string
		mutate func(*lead.Input)
	}{
		{"missing name", func(in *lead.Input) { in.Name = "   " }},
		{"missing phone", func(in *lead.Input) { in.Phone = "" }},
		{"missing service", func(in *lead.Input) { in.Service = "" }},
		{"unknown service", func(in *lead.Input) { in.Service = "crypto" }},
		{"bad contact", func(in *lead.Input) { in.BestContact = "fax" }},
		{"bad email", func(in *lead.Input) { in.Email = "not-an-email" }},
		{"bad language", func(in *lead.Input) { in.Language = "fr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := lead.New(in, now)
			assert.ErrorIs(t, err, lead.ErrInvalidLead)
		})
	}
}

func TestNewReferral_BusinessRules(t *testing.T) {
	l, err := lead.NewReferral(lead.ReferralInput{
		Referrer: "Jean",
		Name:     "Paul",
		Email:    "paul@example.com",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, lead.TypeReferral, l.Type)
	assert.True(t, l.Consent)
	assert.Equal(t, lead.ContactEmail, l.BestContact)
	assert.Equal(t, "referral", l.Source)
	assert.Equal(t, "Jean", l.Referrer)
	assert.Equal(t, lead.LanguageEnglish, l.Language)
	assert.Empty(t, l.Phone)
}

func TestNewReferral_RequiresEmail(t *testing.T) {
	_, err := lead.NewReferral(lead.ReferralInput{Name: "Paul"}, now)
	assert.ErrorIs(t, err, lead.ErrInvalidLead)

	_, err = lead.NewReferral(lead.ReferralInput{Name: "Paul", Email: "paul@"}, now)
	assert.ErrorIs(t, err, lead.ErrInvalidLead)
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    lead.Language
		wantErr bool
	}{
		{"", lead.LanguageEnglish, false},
		{"en", lead.LanguageEnglish, false},
		{"en-US", lead.LanguageEnglish, false},
		{"HT", lead.LanguageHaitian, false},
		{"fr", "", true},
		{"!!", "", true},
	}
	for _, tt := range tests {
		got, err := lead.ParseLanguage(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2024-01-01T00:00:00Z", true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T00:00:00.500Z", true, time.Date(2024, 1, 1, 0, 0, 0, 500e6, time.UTC)},
		{"2024-01-01T05:00:00+05:00", true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01 00:00:00+00", true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01", true, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}
	for _, tt := range tests {
		got, ok := lead.ParseTimestamp(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.True(t, tt.want.Equal(got), "%s parsed as %s", tt.in, got)
		}
	}
}

func TestCreatedMillis_UnparseableIsZero(t *testing.T) {
	assert.Equal(t, int64(0), lead.Lead{CreatedAt: "garbage"}.CreatedMillis())
	assert.Equal(t, int64(1704067200000), lead.Lead{CreatedAt: "2024-01-01T00:00:00Z"}.CreatedMillis())
}

func TestLead_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(lead.Lead{ID: "1", BestContact: lead.ContactCall, ReferralCode: "R1"})
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, `"createdAt":""`)
	assert.Contains(t, s, `"bestContact":"call"`)
	assert.Contains(t, s, `"referralCode":"R1"`)
	assert.NotContains(t, s, `"status"`)
}

func TestFilter(t *testing.T) {
	leads := []lead.Lead{
		{ID: "1", Name: "Marie Joseph", Service: lead.ServiceTax},
		{ID: "2", Name: "Paul", Email: "PAUL@example.com"},
		{ID: "3", Name: "Anne", Notes: "needs payroll help"},
	}

	assert.Len(t, lead.Filter(leads, ""), 3)
	assert.Len(t, lead.Filter(leads, "   "), 3)

	got := lead.Filter(leads, "joseph")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	got = lead.Filter(leads, "paul@EXAMPLE")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	assert.Empty(t, lead.Filter(leads, "nobody"))
}

func TestSummarize(t *testing.T) {
	leads := []lead.Lead{
		{Type: lead.TypeLead, Service: lead.ServiceTax},
		{Type: lead.TypeLead, Service: lead.ServiceBook},
		{Type: lead.TypeReferral},
		{Type: lead.TypeReferral, Service: lead.ServiceTax},
	}
	assert.Equal(t, lead.Stats{Total: 4, Tax: 2, Referrals: 2}, lead.Summarize(leads))
	assert.Equal(t, lead.Stats{}, lead.Summarize(nil))
}
