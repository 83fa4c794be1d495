package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"route-watch-service/internal/config"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
provider = "mock"

[route.commute]
name = "Commute"
start_latlong = [0.0, 0.0]
end_latlong   = [0.0, 0.1]
congestion_threshold = %s
`

func writeConfig(t *testing.T, threshold string, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.toml")
	content := strings.Replace(testConfig, "%s", threshold, 1) + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCheckClearRoute(t *testing.T) {
	cfg := writeConfig(t, "1.5", "")

	out, _, err := run(t, "check", "-c", cfg, "-r", "commute", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "Checking route: Commute")
	assert.Contains(t, out, "Route 'Commute' is clear")
	assert.Contains(t, out, "Current travel time: 45.0 minutes")
	assert.Contains(t, out, "Free-flow travel time: 30.0 minutes")
}

func TestCheckCongestedRouteWithoutAlternative(t *testing.T) {
	cfg := writeConfig(t, "1.2", "")

	out, _, err := run(t, "check", "-c", cfg, "-r", "commute")
	require.NoError(t, err)
	assert.Contains(t, out, "Route 'Commute' is congested!")
	assert.Contains(t, out, "Congestion ratio: 1.50")
	assert.Contains(t, out, "No faster alternative found")
}

func TestCheckJSONOutput(t *testing.T) {
	cfg := writeConfig(t, "1.2", "")

	out, _, err := run(t, "check", "-c", cfg, "-r", "commute", "--format", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Commute", got["route_name"])
	assert.Equal(t, true, got["is_congested"])
	assert.Equal(t, false, got["alternative_available"])
}

func TestCheckYAMLOutput(t *testing.T) {
	cfg := writeConfig(t, "1.5", "")

	out, _, err := run(t, "check", "-c", cfg, "-r", "commute", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "route_name: Commute")
	assert.Contains(t, out, "is_congested: false")
}

func TestCheckErrors(t *testing.T) {
	cfg := writeConfig(t, "1.5", "")

	_, _, err := run(t, "check", "-c", cfg, "-r", "nowhere")
	assert.ErrorContains(t, err, "not found")

	_, _, err = run(t, "check", "-c", cfg, "-r", "commute", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported output format")

	_, _, err = run(t, "check", "-r", "commute")
	assert.Error(t, err)

	_, _, err = run(t, "check", "-c", filepath.Join(t.TempDir(), "missing.toml"), "-r", "commute")
	assert.ErrorContains(t, err, "not found")
}

func TestPopulateFreeFlowSave(t *testing.T) {
	cfg := writeConfig(t, "1.5", "")

	out, stderr, err := run(t, "populate-free-flow", "-c", cfg, "-r", "commute", "--save")
	require.NoError(t, err)
	assert.Contains(t, stderr, "synthetic routes")
	assert.Contains(t, out, "Found optimal route with 3 waypoints")
	assert.Contains(t, out, "Configuration saved to")

	reloaded, err := config.Load(cfg)
	require.NoError(t, err)
	rc, err := reloaded.Route("commute")
	require.NoError(t, err)
	assert.Len(t, rc.FreeFlowRoute, 3)
	assert.Equal(t, 1.5, rc.CongestionThreshold)
}

func TestPopulateFreeFlowWithoutSaveLeavesFile(t *testing.T) {
	cfg := writeConfig(t, "1.5", "")
	before, err := os.ReadFile(cfg)
	require.NoError(t, err)

	out, _, err := run(t, "populate-free-flow", "-c", cfg, "-r", "commute")
	require.NoError(t, err)
	assert.Contains(t, out, "Use --save flag")

	after, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTestNotification(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "sent.txt")
	cfg := writeConfig(t, "1.5", `
[notification]
tool = "sh"
cli_args = ["-c", "printf '%s' \"$1\" > \"$2\"", "sh", "_NOTIFICATION_MESSAGE_", "`+sink+`"]
`)

	out, _, err := run(t, "test-notification", "-c", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Test notification sent")

	got, err := os.ReadFile(sink)
	require.NoError(t, err)
	assert.Equal(t, "route_watch notification test", string(got))
}

func TestTestNotificationWithoutConfig(t *testing.T) {
	_, _, err := run(t, "test-notification", "-c", writeConfig(t, "1.5", ""))
	assert.ErrorContains(t, err, "no notification configured")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "route_watch dev\n", out)
}

func TestInitCacheSqlite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cache.db")
	cfg := writeConfig(t, "1.5", "\n[cache]\nbackend = \"sqlite\"\ndsn = \""+dsn+"\"\n")

	out, _, err := run(t, "init-cache", "-c", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Cache schema ready (sqlite).\n", out)
	assert.FileExists(t, dsn)
}

func TestInitCacheWithoutBackend(t *testing.T) {
	_, _, err := run(t, "init-cache", "-c", writeConfig(t, "1.5", ""))
	assert.ErrorContains(t, err, "no cache backend configured")
}

func TestAppClosesLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "routewatch.log")
	cfg := writeConfig(t, "1.5", "\n[logging]\noutput = \""+logPath+"\"\n")

	a, err := newApp(context.Background(), cfg)
	require.NoError(t, err)

	a.logger.Info("started")
	a.Close()

	file, ok := a.logger.Out.(*os.File)
	require.True(t, ok)
	_, err = file.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}
