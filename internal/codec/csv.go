// Package codec converts the lead collection to and from portable formats:
// CSV and JSON for export and backup, plus vCard, iCalendar follow-ups and a
// PDF report.
package codec

import (
	"strconv"
	"strings"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// EncodeCSV renders a header line followed by one line per row.
// Header cells are joined as-is; row cells are always double-quoted with inner
// quotes doubled. Lines are separated by a single "\n", with no trailing newline.
func EncodeCSV(header []string, rows [][]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))

	for _, row := range rows {
		b.WriteString(config.CSVNewline)
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return []byte(b.String())
}

// LeadsCSV exports leads with the fixed column set.
func LeadsCSV(leads []lead.Lead) []byte {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, record(l))
	}
	return EncodeCSV(config.CSVColumns, rows)
}

// record returns l's values in CSVColumns order.
func record(l lead.Lead) []string {
	return []string{
		l.ID,
		l.CreatedAt,
		string(l.Type),
		l.Name,
		l.Email,
		l.Phone,
		string(l.Service),
		l.Notes,
		string(l.BestContact),
		strconv.FormatBool(l.Consent),
		l.Source,
		l.ReferralCode,
		string(l.Language),
		l.Referrer,
	}
}
