package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")
var ErrRouteNotFound = errors.New("route not found in configuration")

// ErrNoRoute is returned by providers when the backend finds no viable route.
var ErrNoRoute = errors.New("no routes found")

// ConfigError reports bad or missing configuration: unknown provider,
// missing credentials, unreadable config files. Fatal at startup.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %v", e.Msg, e.Err)
	}
	return "config: " + e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProviderError reports a failed routing lookup. Recoverable per call.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NotificationError reports a failed alert dispatch. Logged, never fatal.
type NotificationError struct {
	Notifier string
	Err      error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification via %s: %v", e.Notifier, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
