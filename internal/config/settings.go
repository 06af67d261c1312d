package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// Settings is the runtime configuration, built once at startup.
// Components receive the fields they need; nothing re-reads the environment afterwards.
type Settings struct {
	SupabaseURL string
	SupabaseKey string
	DatabaseURL string
	Bucket      string
	Table       string
	ServerPort  string
	Language    string
}

// RemoteConfigured reports whether any remote backend can be reached.
func (s Settings) RemoteConfigured() bool {
	return s.StorageConfigured() || s.DatabaseURL != ""
}

// StorageConfigured reports whether Supabase REST/Storage credentials are present.
func (s Settings) StorageConfigured() bool {
	return s.SupabaseURL != "" && s.SupabaseKey != ""
}

// Source is one named provider of settings values.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// Load resolves every setting from the sources in priority order.
// The first source returning a non-empty value wins; defaults fill the rest.
func Load(sources ...Source) Settings {
	get := func(key, fallback string) string {
		for _, src := range sources {
			if v, ok := src.Lookup(key); ok && strings.TrimSpace(v) != "" {
				slog.Debug(MsgSettingsLoaded,
					LogKeyComponent, CompSettings,
					LogKeyKey, key,
					LogKeySource, src.Name())
				return strings.TrimSpace(v)
			}
		}
		return fallback
	}

	return Settings{
		SupabaseURL: strings.TrimRight(get(SettingSupabaseURL, ""), "/"),
		SupabaseKey: get(SettingSupabaseKey, ""),
		DatabaseURL: get(SettingDatabaseURL, ""),
		Bucket:      get(SettingBucket, DefaultBucket),
		Table:       get(SettingTable, DefaultTable),
		ServerPort:  get(SettingServerPort, DefaultPort),
		Language:    get(SettingLanguage, DefaultLanguage),
	}
}

// -----------------------------------------------------------------------------
// Sources
// -----------------------------------------------------------------------------

// EnvSource reads the process environment. Each key is tried with the
// bundler-style prefixes first, then bare.
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource creates a source over os.LookupEnv.
func NewEnvSource() EnvSource {
	return EnvSource{lookup: os.LookupEnv}
}

func (EnvSource) Name() string { return SourceNameEnv }

func (s EnvSource) Lookup(key string) (string, bool) {
	lookup := s.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, prefix := range EnvPrefixes {
		if v, ok := lookup(prefix + key); ok && v != "" {
			return v, true
		}
	}
	return lookup(key)
}

// MapSource serves values from a fixed map. The dotenv and YAML sources are MapSources.
type MapSource struct {
	name   string
	values map[string]string
}

// NewMapSource wraps a map as a named source.
func NewMapSource(name string, values map[string]string) MapSource {
	return MapSource{name: name, values: values}
}

func (s MapSource) Name() string { return s.name }

func (s MapSource) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// NewDotEnvSource reads a dotenv file without touching the process environment.
// A missing file yields an empty source.
func NewDotEnvSource(path string) (MapSource, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewMapSource(SourceNameDotEnv, nil), nil
		}
		return NewMapSource(SourceNameDotEnv, nil), fmt.Errorf("%s: %w", ErrDotEnvRead, err)
	}
	return NewMapSource(SourceNameDotEnv, values), nil
}

// yamlSettings is the on-disk layout of config.yaml.
type yamlSettings struct {
	Supabase struct {
		URL     string `yaml:"url"`
		AnonKey string `yaml:"anon_key"`
		Bucket  string `yaml:"bucket"`
		Table   string `yaml:"table"`
	} `yaml:"supabase"`
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Language string `yaml:"language"`
}

// NewYAMLSource reads a YAML settings file. A missing file yields an empty source.
func NewYAMLSource(path string) (MapSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewMapSource(SourceNameYAML, nil), nil
		}
		return NewMapSource(SourceNameYAML, nil), fmt.Errorf("%s: %w", ErrYAMLRead, err)
	}
	defer func() { _ = f.Close() }()

	var doc yamlSettings
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return NewMapSource(SourceNameYAML, nil), fmt.Errorf("%s: %w", ErrYAMLRead, err)
	}

	return NewMapSource(SourceNameYAML, map[string]string{
		SettingSupabaseURL: doc.Supabase.URL,
		SettingSupabaseKey: doc.Supabase.AnonKey,
		SettingBucket:      doc.Supabase.Bucket,
		SettingTable:       doc.Supabase.Table,
		SettingDatabaseURL: doc.Database.URL,
		SettingServerPort:  doc.Server.Port,
		SettingLanguage:    doc.Language,
	}), nil
}

// KeyringSource resolves secrets stored in the OS keyring under KeyringService.
// Only the keys listed in Secrets are looked up.
type KeyringSource struct {
	Service string
	Secrets []string
}

// NewKeyringSource returns the keyring source for the anon key and database URL.
func NewKeyringSource() KeyringSource {
	return KeyringSource{
		Service: KeyringService,
		Secrets: []string{SettingSupabaseKey, SettingDatabaseURL},
	}
}

func (KeyringSource) Name() string { return SourceNameKeyring }

func (s KeyringSource) Lookup(key string) (string, bool) {
	allowed := false
	for _, k := range s.Secrets {
		if k == key {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", false
	}

	v, err := keyring.Get(s.Service, key)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug(MsgSourceFailed,
				LogKeyComponent, CompSettings,
				LogKeySource, SourceNameKeyring,
				LogKeyError, err)
		}
		return "", false
	}
	return v, true
}
