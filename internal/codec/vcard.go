package codec

import (
	"bytes"
	"fmt"

	"github.com/emersion/go-vcard"
	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// ExportVCard renders one vCard 4.0 per lead, for import into an address book.
func ExportVCard(leads []lead.Lead) ([]byte, error) {
	var buf bytes.Buffer
	enc := vcard.NewEncoder(&buf)

	for _, l := range leads {
		if err := enc.Encode(card(l)); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrEncodeVCard, err)
		}
	}
	return buf.Bytes(), nil
}

func card(l lead.Lead) vcard.Card {
	c := make(vcard.Card)
	c.SetValue(vcard.FieldVersion, config.VCardVersion)

	name := l.Name
	if name == "" {
		name = config.FallbackLeadName
	}
	c.SetValue(vcard.FieldFormattedName, name)

	if l.ID != "" {
		c.SetValue(vcard.FieldUID, l.ID)
	}
	if l.Email != "" {
		c.SetValue(vcard.FieldEmail, l.Email)
	}
	if l.Phone != "" {
		c.SetValue(vcard.FieldTelephone, l.Phone)
	}
	if l.Notes != "" {
		c.SetValue(vcard.FieldNote, l.Notes)
	}
	if l.Language != "" {
		c.SetValue(vcard.FieldLanguage, string(l.Language))
	}
	if t, ok := l.Created(); ok {
		c.SetValue(vcard.FieldRevision, t.UTC().Format(config.VCardRevLayout))
	}
	if l.Type != "" {
		c.AddValue(vcard.FieldCategories, string(l.Type))
	}
	if l.Service != "" {
		c.AddValue(vcard.FieldCategories, string(l.Service))
	}
	return c
}
