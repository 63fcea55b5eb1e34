package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ammar0144/catalog4go/pkg/catalog"
	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/reaper"
	"github.com/ammar0144/catalog4go/pkg/session"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a SQLite config; a non-empty jwtSecret switches on token sessions
const testSecret = "cli-test-secret"

func writeConfig(t *testing.T, jwtSecret string) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "catalog.db")
	configPath = filepath.Join(dir, "catalog4go.yaml")

	yaml := "database:\n" +
		"  driver: sqlite\n" +
		"  path: " + dbPath + "\n" +
		"  max_open_conns: 1\n" +
		"  max_idle_conns: 1\n" +
		"media:\n" +
		"  movies_dir: " + filepath.Join(dir, "movies") + "\n" +
		"  series_dir: " + filepath.Join(dir, "series") + "\n" +
		"sweep:\n" +
		"  lock_file: " + filepath.Join(dir, "sweep.lock") + "\n" +
		"logging:\n" +
		"  level: disabled\n"
	if jwtSecret != "" {
		yaml += "security:\n" +
			"  jwt_secret: " + jwtSecret + "\n"
	}
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o600))
	return configPath, dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seedTitle(t *testing.T, dbPath string) {
	t.Helper()
	cfg := db.DefaultConfig()
	cfg.Driver = db.DriverSQLite
	cfg.Path = dbPath
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1

	manager, err := db.NewManager(cfg)
	require.NoError(t, err)
	defer manager.Close()

	store := catalog.NewStore(manager, nil)
	ctx := t.Context()
	require.NoError(t, store.CreateTitle(ctx, &models.Title{ID: "t1", Kind: models.KindPrimary, Name: "Heat"}))
	require.NoError(t, store.CreateActor(ctx, &models.Actor{ID: "a1", Name: "Solo"}))
	require.NoError(t, store.Link(ctx, "t1", "a1"))
	require.NoError(t, store.CreateActor(ctx, &models.Actor{ID: "a2", Name: "Stray"}))
}

func TestCLI_MigrateDeleteSweep(t *testing.T) {
	configPath, dbPath := writeConfig(t, "")

	out, err := run(t, "--config", configPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	seedTitle(t, dbPath)

	out, err = run(t, "--config", configPath, "delete", "t1", "--identity", "u1", "--role", "admin")
	require.NoError(t, err)
	var res map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, map[string]string{"success": "Movie deleted successfully!"}, res)

	out, err = run(t, "--config", configPath, "delete", "t1", "--identity", "u1", "--role", "admin")
	assert.ErrorIs(t, err, errResultFailed)
	assert.ErrorIs(t, err, reaper.ErrNotFound)
	assert.Equal(t, exitNotFound, exitCode(err))
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, map[string]string{"error": "Movie not found!"}, res)

	out, err = run(t, "--config", configPath, "sweep", "--identity", "u1", "--role", "user")
	assert.ErrorIs(t, err, errResultFailed)
	assert.Equal(t, exitDenied, exitCode(err))
	var report sweepOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "forbidden", report.Error)

	out, err = run(t, "--config", configPath, "sweep", "--identity", "u1", "--role", "admin")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"a2"}, report.Deleted)
}

func TestCLI_AnonymousDelete(t *testing.T) {
	configPath, _ := writeConfig(t, "")
	_, err := run(t, "--config", configPath, "migrate")
	require.NoError(t, err)

	out, err := run(t, "--config", configPath, "delete", "t1")
	assert.ErrorIs(t, err, errResultFailed)
	assert.JSONEq(t, `{"error":"Unauthorized!"}`, out)
}

func TestCLI_TokenCannotMixWithStaticFlags(t *testing.T) {
	configPath, _ := writeConfig(t, testSecret)

	_, err := run(t, "--config", configPath, "delete", "t1", "--token", "x", "--role", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token")
}

func TestCLI_InvalidTokenIsUnauthorized(t *testing.T) {
	configPath, _ := writeConfig(t, testSecret)
	_, err := run(t, "--config", configPath, "migrate")
	require.NoError(t, err)

	out, err := run(t, "--config", configPath, "delete", "t1", "--token", "garbage")
	assert.ErrorIs(t, err, errResultFailed)
	assert.JSONEq(t, `{"error":"Unauthorized!"}`, out)
}

func TestCLI_MetricsTextfile(t *testing.T) {
	configPath, _ := writeConfig(t, "")
	metricsPath := filepath.Join(t.TempDir(), "catalog4go.prom")

	_, err := run(t, "--config", configPath, "migrate")
	require.NoError(t, err)

	_, err = run(t, "--config", configPath, "--metrics-textfile", metricsPath, "delete", "missing", "--identity", "u1", "--role", "admin")
	assert.ErrorIs(t, err, errResultFailed)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `catalog4go_title_deletions_total{outcome="not_found"}`)
}

func TestCLI_SweepRefusesWhileLocked(t *testing.T) {
	configPath, _ := writeConfig(t, "")
	_, err := run(t, "--config", configPath, "migrate")
	require.NoError(t, err)

	held := flock.New(filepath.Join(filepath.Dir(configPath), "sweep.lock"))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	_, err = run(t, "--config", configPath, "sweep", "--identity", "u1", "--role", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another sweep")

	require.NoError(t, held.Unlock())
	_, err = run(t, "--config", configPath, "sweep", "--identity", "u1", "--role", "admin")
	assert.NoError(t, err)
}

func TestCLI_StaticFlagsRefusedWhenTokensConfigured(t *testing.T) {
	configPath, dbPath := writeConfig(t, testSecret)
	_, err := run(t, "--config", configPath, "migrate")
	require.NoError(t, err)
	seedTitle(t, dbPath)

	_, err = run(t, "--config", configPath, "delete", "t1", "--identity", "u1", "--role", "admin")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errResultFailed)
	assert.Contains(t, err.Error(), "--token")

	_, err = run(t, "--config", configPath, "sweep", "--role", "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--token")

	jwtManager, err := session.NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	token, err := jwtManager.GenerateToken("u1", "admin")
	require.NoError(t, err)

	out, err := run(t, "--config", configPath, "delete", "t1", "--token", token)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":"Movie deleted successfully!"}`, out)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("%w: %w", errResultFailed, reaper.ErrUnauthorized), exitDenied},
		{fmt.Errorf("%w: %w", errResultFailed, reaper.ErrForbidden), exitDenied},
		{fmt.Errorf("%w: %w", errResultFailed, reaper.ErrNotFound), exitNotFound},
		{fmt.Errorf("%w: %w", errResultFailed, reaper.ErrDeleteFailed), exitFailure},
		{errors.New("bad flag"), exitFailure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), "%v", tt.err)
	}
}
