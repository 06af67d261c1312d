package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/lead"
)

// ErrInvalidFormat is returned for an import payload that is not a JSON array of leads.
var ErrInvalidFormat = errors.New(config.ErrInvalidFormat)

// ExportJSON renders leads as a pretty-printed array. A nil slice renders as [].
func ExportJSON(leads []lead.Lead) ([]byte, error) {
	if leads == nil {
		leads = []lead.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", config.JSONIndent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrEncodeJSON, err)
	}
	return data, nil
}

// DecodeJSON parses a backup payload. Anything other than an array of objects
// fails with ErrInvalidFormat.
func DecodeJSON(data []byte) ([]lead.Lead, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidFormat
	}

	var leads []lead.Lead
	if err := json.Unmarshal(trimmed, &leads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if leads == nil {
		leads = []lead.Lead{}
	}
	return leads, nil
}
