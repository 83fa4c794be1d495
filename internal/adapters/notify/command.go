package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"route-watch-service/internal/domain"
	"strings"
	"time"
)

const (
	// MessagePlaceholder is replaced by the alert text in command arguments.
	MessagePlaceholder = "_NOTIFICATION_MESSAGE_"

	defaultCommandTimeout = 30 * time.Second
)

// CommandConfig is the [notification] section of the configuration file.
type CommandConfig struct {
	Tool    string   `mapstructure:"tool" json:"tool" yaml:"tool" validate:"required"`
	CLIArgs []string `mapstructure:"cli_args" json:"cli_args" yaml:"cli_args"`
}

// Args expands the configured arguments for message. An argument equal to
// MessagePlaceholder becomes the message; an argument of the form <NAME>
// becomes the value of environment variable NAME, which must be set.
func (c CommandConfig) Args(message string) ([]string, error) {
	out := make([]string, 0, len(c.CLIArgs))
	for _, arg := range c.CLIArgs {
		switch {
		case arg == MessagePlaceholder:
			out = append(out, message)
		case len(arg) > 2 && strings.HasPrefix(arg, "<") && strings.HasSuffix(arg, ">"):
			name := arg[1 : len(arg)-1]
			value, ok := os.LookupEnv(name)
			if !ok {
				return nil, fmt.Errorf("environment variable %s is not set", name)
			}
			out = append(out, value)
		default:
			out = append(out, arg)
		}
	}
	return out, nil
}

func (c CommandConfig) mentionsMessage() bool {
	for _, arg := range c.CLIArgs {
		if arg == MessagePlaceholder {
			return true
		}
	}
	return false
}

// CommandNotifier delivers alerts by running an external program.
// When no argument carries the message it is written to the program's stdin.
type CommandNotifier struct {
	cfg     CommandConfig
	timeout time.Duration
}

func NewCommandNotifier(cfg CommandConfig) *CommandNotifier {
	return &CommandNotifier{cfg: cfg, timeout: defaultCommandTimeout}
}

func (n *CommandNotifier) Send(ctx context.Context, message string) error {
	if n.cfg.Tool == "" {
		return &domain.NotificationError{Notifier: "command", Err: errors.New("no notification tool configured")}
	}

	args, err := n.cfg.Args(message)
	if err != nil {
		return &domain.NotificationError{Notifier: n.cfg.Tool, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, n.cfg.Tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	if !n.cfg.mentionsMessage() {
		cmd.Stdin = strings.NewReader(message + "\n")
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &domain.NotificationError{
				Notifier: n.cfg.Tool,
				Err:      fmt.Errorf("timed out after %s", n.timeout),
			}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &domain.NotificationError{
				Notifier: n.cfg.Tool,
				Err: fmt.Errorf("exit code %d: %s",
					exitErr.ExitCode(), strings.TrimSpace(stderr.String())),
			}
		}
		return &domain.NotificationError{Notifier: n.cfg.Tool, Err: err}
	}

	return nil
}
