package codec

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// ExportFollowUps renders an all-day event for every lead still in the "new"
// status, dated on the next business day after it came in. Leads without a
// readable timestamp are skipped. With nothing to schedule the result is a
// valid empty calendar.
func ExportFollowUps(leads []lead.Lead, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(now.UTC())

	for _, l := range leads {
		if l.StatusOrDefault() != config.DefaultStatus {
			continue
		}
		created, ok := l.Created()
		if !ok {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, l.ID, config.ICalDomain))
		event.Props.Set(dtStamp)

		name := l.Name
		if name == "" {
			name = config.FallbackLeadName
		}
		event.Props.SetText(config.PropSummary, fmt.Sprintf(config.FormatSummary, name))

		start := ical.NewProp(config.PropDTStart)
		start.SetDate(NextBusinessDay(created))
		event.Props.Set(start)

		if desc := description(l); desc != "" {
			event.Props.SetText(config.PropDescription, desc)
		}
		if l.Type != "" {
			event.Props.SetText(config.PropCategories, string(l.Type))
		}

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// NextBusinessDay returns the first weekday strictly after t's UTC date.
func NextBusinessDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func description(l lead.Lead) string {
	var parts []string
	if l.Service != "" {
		svc := string(l.Service)
		if l.BestContact != "" {
			svc = fmt.Sprintf(config.FormatService, l.Service, l.BestContact)
		}
		parts = append(parts, svc)
	}
	if l.Phone != "" {
		parts = append(parts, l.Phone)
	}
	if l.Email != "" {
		parts = append(parts, l.Email)
	}
	if l.Notes != "" {
		parts = append(parts, l.Notes)
	}
	return strings.Join(parts, "\n")
}
