package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// Filenames use the UTC date, matching the timestamps they sit next to.

func CSVFilename(now time.Time) string {
	return config.FilePrefix + now.UTC().Format(config.DateLayout) + config.ExtCSV
}

func BackupFilename(now time.Time) string {
	return config.FilePrefixBackup + now.UTC().Format(config.DateLayout) + config.ExtJSON
}

// RemoteBackupLabel is the object name of a cloud backup taken at now.
func RemoteBackupLabel(now time.Time) string {
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(lead.FormatTimestamp(now))
	return config.FilePrefix + ts + config.ExtJSON
}

func VCardFilename(now time.Time) string {
	return config.FilePrefix + now.UTC().Format(config.DateLayout) + config.ExtVCard
}

func FollowUpsFilename(now time.Time) string {
	return config.FilePrefixFollowUps + now.UTC().Format(config.DateLayout) + config.ExtICS
}

func PDFFilename(now time.Time) string {
	return config.FilePrefix + now.UTC().Format(config.DateLayout) + config.ExtPDF
}

// Export renders leads in the named format and returns the default filename for it.
func Export(format string, leads []lead.Lead, now time.Time) ([]byte, string, error) {
	switch format {
	case config.FormatCSV:
		return LeadsCSV(leads), CSVFilename(now), nil
	case config.FormatJSON:
		data, err := ExportJSON(leads)
		return data, BackupFilename(now), err
	case config.FormatVCard:
		data, err := ExportVCard(leads)
		return data, VCardFilename(now), err
	case config.FormatICS:
		data, err := ExportFollowUps(leads, now)
		return data, FollowUpsFilename(now), err
	case config.FormatPDF:
		data, err := ExportPDF(leads, now)
		return data, PDFFilename(now), err
	default:
		return nil, "", fmt.Errorf("%s: %q", config.ErrUnknownFormat, format)
	}
}
