package notify

import (
	"fmt"
	"sort"
)

// Preset builds a ready-made CommandConfig from its parameters.
type Preset func(params ...string) (CommandConfig, error)

var presets = map[string]Preset{
	"telegram": telegramPreset,
	"slack":    slackPreset,
	"mail":     mailPreset,
	"ntfy":     ntfyPreset,
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames lists the available presets in alphabetical order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// telegramPreset takes the names of the bot token and chat id environment variables.
func telegramPreset(params ...string) (CommandConfig, error) {
	if len(params) != 2 {
		return CommandConfig{}, fmt.Errorf("telegram preset: want bot token and chat id variable names, got %d params", len(params))
	}
	return CommandConfig{
		Tool: "telegram_notifier",
		CLIArgs: []string{
			"send",
			"--token", "<" + params[0] + ">",
			"--chat-id", "<" + params[1] + ">",
			"--message", MessagePlaceholder,
		},
	}, nil
}

// slackPreset takes the name of the webhook URL environment variable.
func slackPreset(params ...string) (CommandConfig, error) {
	if len(params) != 1 {
		return CommandConfig{}, fmt.Errorf("slack preset: want webhook variable name, got %d params", len(params))
	}
	return CommandConfig{
		Tool: "slack",
		CLIArgs: []string{
			"chat", "send",
			"--webhook-url", "<" + params[0] + ">",
			"--text", MessagePlaceholder,
		},
	}, nil
}

// mailPreset takes a recipient and an optional subject.
func mailPreset(params ...string) (CommandConfig, error) {
	if len(params) < 1 || len(params) > 2 {
		return CommandConfig{}, fmt.Errorf("mail preset: want recipient and optional subject, got %d params", len(params))
	}
	subject := "Traffic Alert"
	if len(params) == 2 {
		subject = params[1]
	}
	return CommandConfig{
		Tool:    "mail",
		CLIArgs: []string{"-s", subject, params[0]},
	}, nil
}

// ntfyPreset takes a topic and an optional server host.
func ntfyPreset(params ...string) (CommandConfig, error) {
	if len(params) < 1 || len(params) > 2 {
		return CommandConfig{}, fmt.Errorf("ntfy preset: want topic and optional server, got %d params", len(params))
	}
	server := "ntfy.sh"
	if len(params) == 2 {
		server = params[1]
	}
	return CommandConfig{
		Tool:    "curl",
		CLIArgs: []string{"-d", MessagePlaceholder, fmt.Sprintf("https://%s/%s", server, params[0])},
	}, nil
}
