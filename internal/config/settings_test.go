package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kmrtax/kmr-leads/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestLoad_Defaults(t *testing.T) {
	s := config.Load()

	assert.Empty(t, s.SupabaseURL)
	assert.Equal(t, config.DefaultBucket, s.Bucket)
	assert.Equal(t, config.DefaultTable, s.Table)
	assert.Equal(t, config.DefaultPort, s.ServerPort)
	assert.Equal(t, config.DefaultLanguage, s.Language)
	assert.False(t, s.RemoteConfigured(), "No source means local-only mode")
}

func TestLoad_FirstNonEmptySourceWins(t *testing.T) {
	high := config.NewMapSource("high", map[string]string{
		config.SettingSupabaseURL: "https://high.supabase.co/",
		config.SettingSupabaseKey: "  ",
	})
	low := config.NewMapSource("low", map[string]string{
		config.SettingSupabaseURL: "https://low.supabase.co",
		config.SettingSupabaseKey: "anon-low",
		config.SettingBucket:      "archive",
	})

	s := config.Load(high, low)

	assert.Equal(t, "https://high.supabase.co", s.SupabaseURL, "Trailing slash is trimmed")
	assert.Equal(t, "anon-low", s.SupabaseKey, "Blank values fall through to the next source")
	assert.Equal(t, "archive", s.Bucket)
	assert.True(t, s.StorageConfigured())
	assert.True(t, s.RemoteConfigured())
}

func TestSettings_DatabaseOnlyIsRemote(t *testing.T) {
	s := config.Settings{DatabaseURL: "postgres://localhost/leads"}
	assert.True(t, s.RemoteConfigured())
	assert.False(t, s.StorageConfigured(), "Backups need Storage credentials")
}

func TestEnvSource_PrefixPriority(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://bare.example")
	t.Setenv("REACT_APP_SUPABASE_URL", "https://react.example")
	t.Setenv("VITE_SUPABASE_URL", "https://vite.example")

	v, ok := config.NewEnvSource().Lookup(config.SettingSupabaseURL)
	require.True(t, ok)
	assert.Equal(t, "https://vite.example", v)

	t.Setenv("VITE_SUPABASE_URL", "")
	v, _ = config.NewEnvSource().Lookup(config.SettingSupabaseURL)
	assert.Equal(t, "https://react.example", v)
}

func TestEnvSource_BareFallback(t *testing.T) {
	t.Setenv("SUPABASE_BUCKET", "nightly")

	v, ok := config.NewEnvSource().Lookup(config.SettingBucket)
	require.True(t, ok)
	assert.Equal(t, "nightly", v)
}

func TestDotEnvSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SUPABASE_URL=https://dotenv.example\nSERVER_PORT=19000\n"), 0600))

	src, err := config.NewDotEnvSource(path)
	require.NoError(t, err)

	s := config.Load(src)
	assert.Equal(t, "https://dotenv.example", s.SupabaseURL)
	assert.Equal(t, "19000", s.ServerPort)
}

func TestDotEnvSource_MissingFile(t *testing.T) {
	src, err := config.NewDotEnvSource(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	_, ok := src.Lookup(config.SettingSupabaseURL)
	assert.False(t, ok)
}

func TestYAMLSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	doc := `
supabase:
  url: https://yaml.supabase.co
  anon_key: anon-yaml
  bucket: yaml_bucket
database:
  url: postgres://user@localhost/kmr
server:
  port: "18181"
language: ht
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	src, err := config.NewYAMLSource(path)
	require.NoError(t, err)

	s := config.Load(src)
	assert.Equal(t, "https://yaml.supabase.co", s.SupabaseURL)
	assert.Equal(t, "anon-yaml", s.SupabaseKey)
	assert.Equal(t, "yaml_bucket", s.Bucket)
	assert.Equal(t, config.DefaultTable, s.Table)
	assert.Equal(t, "postgres://user@localhost/kmr", s.DatabaseURL)
	assert.Equal(t, "18181", s.ServerPort)
	assert.Equal(t, "ht", s.Language)
}

func TestYAMLSource_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("supabase: [unclosed"), 0600))

	_, err := config.NewYAMLSource(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrYAMLRead)
}

func TestKeyringSource(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, config.SettingSupabaseKey, "anon-secret"))

	src := config.NewKeyringSource()

	v, ok := src.Lookup(config.SettingSupabaseKey)
	require.True(t, ok)
	assert.Equal(t, "anon-secret", v)

	_, ok = src.Lookup(config.SettingDatabaseURL)
	assert.False(t, ok, "Unset secrets are absent")

	_, ok = src.Lookup(config.SettingSupabaseURL)
	assert.False(t, ok, "Non-secret keys are never read from the keyring")
}
