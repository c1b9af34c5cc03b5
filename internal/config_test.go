package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "novarel", cfg.AppName)
	require.Equal(t, "main", cfg.Catalog.Name)
	require.Equal(t, "127.0.0.1:8866", cfg.Server.Addr)
	require.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novarel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`app_name: hr
catalog:
  name: company
import:
  dir: ./data
  files: [Employees.csv, Depts.csv]
  queries: [queries.yaml]
server:
  addr: ":9000"
log:
  level: warn
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "hr", cfg.AppName)
	require.Equal(t, "company", cfg.Catalog.Name)
	require.Equal(t, "./data", cfg.Import.Dir)
	require.Equal(t, []string{"Employees.csv", "Depts.csv"}, cfg.Import.Files)
	require.Equal(t, []string{"queries.yaml"}, cfg.Import.Queries)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, slog.LevelWarn, cfg.SlogLevel())

	cfg.Server.Debug = true
	require.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NOVAREL_SERVER_ADDR", "0.0.0.0:7000")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:7000", cfg.Server.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
