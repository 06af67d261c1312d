// Package messages localises the user-facing CLI output (English and Haitian Creole).
package messages

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// go-i18n refuses languages without a CLDR plural rule, and Haitian Creole has
// none. Its messages are registered under fr-HT instead; no message is pluralised.
var bundleTags = map[string]language.Tag{
	"ht": language.MustParse("fr-HT"),
}

// Catalog translates message keys into one language.
type Catalog struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	lang      string

	// Languages lists the languages found in the embedded locale files.
	Languages []string
}

// New loads every embedded locale and selects lang. Unknown languages fall back to English.
func New(lang string) *Catalog {
	c := &Catalog{bundle: i18n.NewBundle(language.English)}
	c.bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		c.SetLanguage(lang)
		return c
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if err := c.load("locales/"+name, langCode); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		c.Languages = append(c.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	c.SetLanguage(lang)
	return c
}

func (c *Catalog) load(path, langCode string) error {
	buf, err := localeFS.ReadFile(path)
	if err != nil {
		return err
	}
	mf, err := i18n.ParseMessageFileBytes(buf, path, map[string]i18n.UnmarshalFunc{"json": json.Unmarshal})
	if err != nil {
		return err
	}

	tag := mf.Tag
	if mapped, ok := bundleTags[langCode]; ok {
		tag = mapped
	}
	return c.bundle.AddMessages(tag, mf.Messages...)
}

// SetLanguage switches the output language.
func (c *Catalog) SetLanguage(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = config.DefaultLanguage
	}

	tag := lang
	if mapped, ok := bundleTags[lang]; ok {
		tag = mapped.String()
	}
	c.lang = lang
	c.localizer = i18n.NewLocalizer(c.bundle, tag)
}

// Language returns the selected language code.
func (c *Catalog) Language() string { return c.lang }

// Get translates key. Missing keys come back verbatim.
func (c *Catalog) Get(key string) string {
	return c.Format(key, nil)
}

// Format translates key, filling template fields from data.
func (c *Catalog) Format(key string, data map[string]interface{}) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
