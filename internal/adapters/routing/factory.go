package routing

import (
	"fmt"
	"os"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/ports"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ProviderMapbox    = "mapbox"
	ProviderGoogle    = "google"
	ProviderSynthetic = "mock"

	MapboxKeyEnv = "MAPBOX_API_KEY"
	GoogleKeyEnv = "GOOGLE_MAPS_API_KEY"
)

// Settings selects and configures a routing provider. It is decoded from the
// api_config section of the configuration file.
type Settings struct {
	Provider       string        `mapstructure:"provider" json:"provider,omitempty" yaml:"provider,omitempty"`
	APIKey         string        `mapstructure:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL        string        `mapstructure:"base_url" json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout        time.Duration `mapstructure:"timeout" json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxCoordinates int           `mapstructure:"max_coordinates" json:"max_coordinates,omitempty" yaml:"max_coordinates,omitempty"`
}

// NewProvider builds the RouteProvider named by s.Provider. An empty name
// falls back to the synthetic provider. API keys missing from s are read from
// the provider's environment variable.
func NewProvider(s Settings, logger logrus.FieldLogger) (ports.RouteProvider, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	switch name := strings.ToLower(strings.TrimSpace(s.Provider)); name {
	case "":
		logger.Warn("no routing provider configured, using synthetic routes")
		return NewSyntheticProvider(nil), nil

	case ProviderSynthetic:
		return NewSyntheticProvider(nil), nil

	case ProviderMapbox:
		s.APIKey = resolveKey(s.APIKey, MapboxKeyEnv)
		if s.APIKey == "" {
			return nil, missingKey(name, MapboxKeyEnv)
		}
		p, err := NewMapboxProvider(s, logger.WithField("provider", name))
		if err != nil {
			return nil, &domain.ConfigError{Msg: "mapbox provider", Err: err}
		}
		return p, nil

	case ProviderGoogle:
		s.APIKey = resolveKey(s.APIKey, GoogleKeyEnv)
		if s.APIKey == "" {
			return nil, missingKey(name, GoogleKeyEnv)
		}
		p, err := NewGoogleProvider(s, logger.WithField("provider", name))
		if err != nil {
			return nil, &domain.ConfigError{Msg: "google provider", Err: err}
		}
		return p, nil

	default:
		return nil, &domain.ConfigError{Msg: fmt.Sprintf("unsupported API provider: %q", s.Provider)}
	}
}

func resolveKey(configured, env string) string {
	if configured != "" {
		return configured
	}
	return strings.TrimSpace(os.Getenv(env))
}

func missingKey(provider, env string) error {
	return &domain.ConfigError{
		Msg: fmt.Sprintf("%s API key not found: set api_key in api_config or the %s environment variable", provider, env),
	}
}
