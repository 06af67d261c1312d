package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/stretchr/testify/assert"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"PrefLeads", config.PrefLeads},
		{"PrefLastBackup", config.PrefLastBackup},
		{"ICalProdid", config.ICalProdid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestStorageKeys_Stable guards the persisted identifiers; renaming them orphans existing data.
func TestStorageKeys_Stable(t *testing.T) {
	assert.Equal(t, "kmr_leads_v1", config.PrefLeads)
	assert.Equal(t, "kmr_last_cloud_backup", config.PrefLastBackup)
	assert.NotEqual(t, config.PrefLeads, config.PrefLastBackup)
}

// TestCSVColumns_Order pins the export column order.
func TestCSVColumns_Order(t *testing.T) {
	assert.Equal(t,
		"id,createdAt,type,name,email,phone,service,notes,bestContact,consent,source,referralCode,language,referrer",
		strings.Join(config.CSVColumns, ","))
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "KMR-Leads/"), "UserAgent must start with AppName/")
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	t.Parallel()

	assert.Greater(t, config.HTTPTimeout, 0*time.Second)
	assert.Greater(t, config.RemoteTimeout, 0*time.Second)
	assert.LessOrEqual(t, config.RemoteTimeout, config.HTTPTimeout, "A remote task must not outlive its HTTP client")
	assert.GreaterOrEqual(t, config.DrainTimeout, config.RemoteTimeout, "Draining must wait for at least one remote task")
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second)
	assert.Greater(t, int64(config.MaxHTTPResponseSize), int64(0))
}

func TestTimestampLayout_MatchesISOString(t *testing.T) {
	ts := time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-11-04T12:00:00.000Z", ts.Format(config.TimestampLayout))
}

func TestPDFLayout_Consistent(t *testing.T) {
	assert.Len(t, config.PDFWidths, len(config.PDFColumns))
}
