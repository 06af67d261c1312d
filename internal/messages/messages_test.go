package messages_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/kmrtax/kmr-leads/internal/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	config.TKeyLeadAdded,
	config.TKeyReferralSent,
	config.TKeyLeadDeleted,
	config.TKeyLeadNotFound,
	config.TKeyLeadsEmpty,
	config.TKeyImported,
	config.TKeyImportFailed,
	config.TKeyExported,
	config.TKeyBackupSaved,
	config.TKeyBackupFailed,
	config.TKeyBackupOff,
	config.TKeyLocalOnly,
	config.TKeyCloudActive,
	config.TKeySynced,
	config.TKeySyncFailed,
	config.TKeyReset,
	config.TKeyStatTotal,
	config.TKeyStatTax,
	config.TKeyStatReferrals,
	config.TKeyStatusNew,
	config.TKeyInvalidLead,
	config.TKeyServing,
	config.TKeyColCreated,
	config.TKeyColName,
	config.TKeyColService,
	config.TKeyColStatus,
}

// TestLocaleIntegrity ensures every key defined in config exists in every locale file.
func TestLocaleIntegrity(t *testing.T) {
	defined := make(map[string]bool)
	for _, k := range allKeys {
		defined[k] = true
	}

	for _, file := range []string{"locales/active.en.json", "locales/active.ht.json"} {
		content, err := os.ReadFile(file)
		require.NoError(t, err, file)

		var jsonMap map[string]interface{}
		require.NoError(t, json.Unmarshal(content, &jsonMap), "%s must be valid JSON", file)

		for key := range defined {
			_, exists := jsonMap[key]
			assert.Truef(t, exists, "Key '%s' defined in config.go is missing in %s", key, file)
		}
		for jsonKey := range jsonMap {
			if strings.HasPrefix(jsonKey, "_") {
				continue
			}
			assert.Truef(t, defined[jsonKey], "Key '%s' in %s has no TKey constant", jsonKey, file)
		}
	}
}

func TestCatalog_LoadsBothLanguages(t *testing.T) {
	c := messages.New("en")
	assert.ElementsMatch(t, []string{"en", "ht"}, c.Languages)
}

func TestCatalog_Translate(t *testing.T) {
	en := messages.New("en")
	assert.Equal(t, "No leads yet. Collect some!", en.Get(config.TKeyLeadsEmpty))
	assert.Equal(t, "Imported 3 records from backup.",
		en.Format(config.TKeyImported, map[string]interface{}{"Count": 3}))

	ht := messages.New("ht")
	assert.Equal(t, "ht", ht.Language())
	assert.Equal(t, "Pa gen kontak ankò. Rekòlte kèk!", ht.Get(config.TKeyLeadsEmpty))
	assert.Equal(t, "Estati", ht.Get(config.TKeyColStatus))
	assert.Equal(t, "Nouvo", ht.Get(config.TKeyStatusNew))
}

func TestCatalog_SwitchAndFallback(t *testing.T) {
	c := messages.New("")
	assert.Equal(t, config.DefaultLanguage, c.Language())

	c.SetLanguage(" HT ")
	assert.Equal(t, "Referans", c.Get(config.TKeyStatReferrals))

	c.SetLanguage("de")
	assert.Equal(t, "Referrals", c.Get(config.TKeyStatReferrals))

	assert.Equal(t, "no_such_key", c.Get("no_such_key"))
}
