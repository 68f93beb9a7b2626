package configs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundmark/soundmark/configs"
)

func TestLoadConfigAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  type: mysql\n  dsn: test\n"), 0o644))

	cfg, err := configs.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Database.Type)
	require.Equal(t, 22050, cfg.Fingerprint.SampleRate)
	require.Equal(t, 5, cfg.Fingerprint.MinConfidence)
}

func TestLoadConfigRejectsUnsupportedDatabaseType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  type: sqlite\n"), 0o644))

	_, err := configs.LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	_, err := configs.LoadConfig("/nonexistent/path.yaml")
	require.Error(t, err)
}
