package notify

import (
	"context"
	"os"
	"path/filepath"
	"route-watch-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandConfigArgs(t *testing.T) {
	t.Setenv("RW_TEST_TOKEN", "secret")

	cfg := CommandConfig{
		Tool:    "notifier",
		CLIArgs: []string{"--token", "<RW_TEST_TOKEN>", "--text", MessagePlaceholder, "<>", "x_NOTIFICATION_MESSAGE_"},
	}

	args, err := cfg.Args("hello world")
	require.NoError(t, err)
	assert.Equal(t, []string{"--token", "secret", "--text", "hello world", "<>", "x_NOTIFICATION_MESSAGE_"}, args)
}

func TestCommandConfigArgsMissingEnv(t *testing.T) {
	cfg := CommandConfig{Tool: "notifier", CLIArgs: []string{"<RW_TEST_DEFINITELY_UNSET>"}}

	_, err := cfg.Args("msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RW_TEST_DEFINITELY_UNSET")

	n := NewCommandNotifier(cfg)
	err = n.Send(context.Background(), "msg")
	var nerr *domain.NotificationError
	require.ErrorAs(t, err, &nerr)
}

func TestCommandNotifierPassesMessageArgument(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")

	n := NewCommandNotifier(CommandConfig{
		Tool:    "sh",
		CLIArgs: []string{"-c", `printf '%s' "$1" > "$2"`, "sh", MessagePlaceholder, out},
	})
	require.NoError(t, n.Send(context.Background(), "Traffic Alert: test"))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Traffic Alert: test", string(got))
}

func TestCommandNotifierWritesStdinWithoutPlaceholder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")

	n := NewCommandNotifier(CommandConfig{Tool: "sh", CLIArgs: []string{"-c", `cat > "$1"`, "sh", out}})
	require.NoError(t, n.Send(context.Background(), "body"))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "body\n", string(got))
}

func TestCommandNotifierNonZeroExit(t *testing.T) {
	n := NewCommandNotifier(CommandConfig{Tool: "sh", CLIArgs: []string{"-c", "echo oops >&2; exit 3"}})

	err := n.Send(context.Background(), "msg")
	var nerr *domain.NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "sh", nerr.Notifier)
	assert.Contains(t, err.Error(), "exit code 3")
	assert.Contains(t, err.Error(), "oops")
}

func TestCommandNotifierTimeout(t *testing.T) {
	n := NewCommandNotifier(CommandConfig{Tool: "sh", CLIArgs: []string{"-c", "exec sleep 5"}})
	n.timeout = 50 * time.Millisecond

	start := time.Now()
	err := n.Send(context.Background(), "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommandNotifierMissingTool(t *testing.T) {
	n := NewCommandNotifier(CommandConfig{Tool: "routewatch-no-such-binary"})
	err := n.Send(context.Background(), "msg")

	var nerr *domain.NotificationError
	require.ErrorAs(t, err, &nerr)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"mail", "ntfy", "slack", "telegram"}, PresetNames())

	p, ok := LookupPreset("ntfy")
	require.True(t, ok)
	cfg, err := p("alerts")
	require.NoError(t, err)
	assert.Equal(t, CommandConfig{Tool: "curl", CLIArgs: []string{"-d", MessagePlaceholder, "https://ntfy.sh/alerts"}}, cfg)

	p, _ = LookupPreset("telegram")
	cfg, err = p("TG_TOKEN", "TG_CHAT")
	require.NoError(t, err)
	assert.Equal(t, "telegram_notifier", cfg.Tool)
	assert.Contains(t, cfg.CLIArgs, "<TG_TOKEN>")
	assert.Contains(t, cfg.CLIArgs, "<TG_CHAT>")

	p, _ = LookupPreset("mail")
	cfg, err = p("ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"-s", "Traffic Alert", "ops@example.com"}, cfg.CLIArgs)

	p, _ = LookupPreset("slack")
	_, err = p()
	assert.Error(t, err)

	_, ok = LookupPreset("pager")
	assert.False(t, ok)
}
