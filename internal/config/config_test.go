package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps stray config files and environment out of a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("talagalog", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.User)
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, RenderTerminal, cfg.Render.Mode)
	assert.Equal(t, 12, cfg.Render.Height)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
user: from-file
data_dir: /data
storage:
  backend: parquet
render:
  height: 20
log:
  level: info
`), 0o644))

	t.Setenv("TALAGALOG_USER", "from-env")
	t.Setenv("TALAGALOG_LOG_LEVEL", "error")

	cfg, err := Load(flags(t, "--config", file, "--log-level", "debug"))
	require.NoError(t, err)

	assert.Equal(t, file, cfg.File)
	assert.Equal(t, "from-env", cfg.User, "env beats file")
	assert.Equal(t, "debug", cfg.Log.Level, "flag beats env")
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, BackendParquet, cfg.Storage.Backend)
	assert.Equal(t, 20, cfg.Render.Height)
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "talagalog.yaml"), []byte("user: carol\n"), 0o644))

	cfg, err := Load(flags(t))
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.User)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(flags(t, "-c", filepath.Join(dir, "nope.yaml")))
	assert.Error(t, err)
}

func TestLoad_SQLiteDefaultsDSN(t *testing.T) {
	isolate(t)
	cfg, err := Load(flags(t, "-b", "SQLite", "--data-dir", "/var/lib/talagalog"))
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join("/var/lib/talagalog", "talagalog.db"), cfg.Storage.DSN)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DataDir: ".",
			Storage: StorageConfig{Backend: BackendCSV},
			Render:  RenderConfig{Mode: RenderTerminal, Height: 10},
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, true},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Backend = BackendPostgres
			c.Storage.DSN = "postgres://localhost/talagalog"
		}, false},
		{"unknown render mode", func(c *Config) { c.Render.Mode = "svg" }, true},
		{"zero height", func(c *Config) { c.Render.Height = 0 }, true},
		{"user with separator", func(c *Config) { c.User = "../etc" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
