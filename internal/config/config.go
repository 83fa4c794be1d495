package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"route-watch-service/internal/adapters/notify"
	"route-watch-service/internal/adapters/routing"
	"route-watch-service/internal/domain"
	"route-watch-service/internal/platform/logging"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Sections with a meaning of their own. Every other top-level key belongs to api_config.
const (
	keyRoute        = "route"
	keyNotification = "notification"
	keyAPIConfig    = "api_config"
	keyLogging      = "logging"
	keyCache        = "cache"
	keyKafka        = "kafka"
	keySES          = "ses"
	keyAPI          = "api"

	routePrefix = keyRoute + "."

	// Route names contain dots, so viper must not split keys on them.
	keyDelimiter = "::"
)

const (
	CacheNone     = "none"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
	CacheSqlite   = "sqlite"

	DefaultAPIPort = 8080
)

// Config is a loaded configuration file.
type Config struct {
	Routes       map[string]domain.RouteConfig
	Notification *notify.CommandConfig

	// APIConfig holds provider settings as written in the file.
	APIConfig map[string]any

	Logging logging.Config
	Cache   CacheConfig
	Kafka   *notify.KafkaConfig
	SES     *notify.SESConfig
	API     APIServerConfig
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend" validate:"omitempty,oneof=none redis postgres sqlite"`
	DSN     string        `mapstructure:"dsn"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// Enabled reports whether a cache backend is selected.
func (c CacheConfig) Enabled() bool {
	return c.Backend != "" && c.Backend != CacheNone
}

type APIServerConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

type routeEntry struct {
	Name                string      `mapstructure:"name"`
	StartLatLong        []float64   `mapstructure:"start_latlong"`
	EndLatLong          []float64   `mapstructure:"end_latlong"`
	FreeFlowRoute       [][]float64 `mapstructure:"free_flow_route"`
	CongestionThreshold *float64    `mapstructure:"congestion_threshold"`
}

var validate = validator.New()

// Load reads a TOML, YAML or JSON file. The format follows the file
// extension; files with another extension are tried as TOML, YAML and JSON
// in that order.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.ConfigError{Msg: fmt.Sprintf("configuration file not found: %s", path)}
		}
		return nil, &domain.ConfigError{Msg: "read configuration file", Err: err}
	}

	v, err := parse(path, data)
	if err != nil {
		return nil, err
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parse(path string, data []byte) (*viper.Viper, error) {
	formats := []string{"toml", "yaml", "json"}
	if f := formatFor(path); f != "" {
		formats = []string{f}
	}

	var lastErr error
	for _, f := range formats {
		v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
		v.SetConfigType(f)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			lastErr = err
			continue
		}
		return v, nil
	}

	return nil, &domain.ConfigError{Msg: fmt.Sprintf("unable to parse configuration file: %s", path), Err: lastErr}
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yml", ".yaml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Routes:    map[string]domain.RouteConfig{},
		APIConfig: map[string]any{},
		Logging:   logging.DefaultConfig(),
	}

	for key, value := range v.AllSettings() {
		switch {
		case strings.HasPrefix(key, routePrefix):
			name := strings.TrimPrefix(key, routePrefix)
			var entry routeEntry
			if err := v.UnmarshalKey(key, &entry); err != nil {
				return nil, &domain.ConfigError{Msg: fmt.Sprintf("route %q", name), Err: err}
			}
			if err := cfg.addRoute(name, entry); err != nil {
				return nil, err
			}

		case key == keyRoute:
			var entries map[string]routeEntry
			if err := v.UnmarshalKey(key, &entries); err != nil {
				return nil, &domain.ConfigError{Msg: "route table", Err: err}
			}
			for name, entry := range entries {
				if err := cfg.addRoute(name, entry); err != nil {
					return nil, err
				}
			}

		case key == keyNotification:
			var n notify.CommandConfig
			if err := v.UnmarshalKey(key, &n); err != nil {
				return nil, &domain.ConfigError{Msg: "notification", Err: err}
			}
			cfg.Notification = &n

		case key == keyAPIConfig:
			m, ok := value.(map[string]any)
			if !ok {
				return nil, &domain.ConfigError{Msg: "api_config must be a table"}
			}
			for k, val := range m {
				cfg.APIConfig[k] = val
			}

		case key == keyLogging:
			if err := v.UnmarshalKey(key, &cfg.Logging); err != nil {
				return nil, &domain.ConfigError{Msg: "logging", Err: err}
			}

		case key == keyCache:
			if err := v.UnmarshalKey(key, &cfg.Cache); err != nil {
				return nil, &domain.ConfigError{Msg: "cache", Err: err}
			}

		case key == keyKafka:
			var k notify.KafkaConfig
			if err := v.UnmarshalKey(key, &k); err != nil {
				return nil, &domain.ConfigError{Msg: "kafka", Err: err}
			}
			cfg.Kafka = &k

		case key == keySES:
			var s notify.SESConfig
			if err := v.UnmarshalKey(key, &s); err != nil {
				return nil, &domain.ConfigError{Msg: "ses", Err: err}
			}
			cfg.SES = &s

		case key == keyAPI:
			if err := v.UnmarshalKey(key, &cfg.API); err != nil {
				return nil, &domain.ConfigError{Msg: "api", Err: err}
			}

		default:
			cfg.APIConfig[key] = value
		}
	}

	return cfg, nil
}

func (c *Config) addRoute(key string, e routeEntry) error {
	if _, dup := c.Routes[key]; dup {
		return &domain.ConfigError{Msg: fmt.Sprintf("route %q defined more than once", key)}
	}

	start, err := domain.CoordinateFromPair(e.StartLatLong)
	if err != nil {
		return &domain.ConfigError{Msg: fmt.Sprintf("route %q: start_latlong", key), Err: err}
	}
	end, err := domain.CoordinateFromPair(e.EndLatLong)
	if err != nil {
		return &domain.ConfigError{Msg: fmt.Sprintf("route %q: end_latlong", key), Err: err}
	}
	waypoints, err := domain.CoordinatesFromPairs(e.FreeFlowRoute)
	if err != nil {
		return &domain.ConfigError{Msg: fmt.Sprintf("route %q: free_flow_route", key), Err: err}
	}

	threshold := domain.DefaultCongestionThreshold
	if e.CongestionThreshold != nil {
		threshold = *e.CongestionThreshold
	}

	c.Routes[key] = domain.RouteConfig{
		Name:                e.Name,
		Start:               start,
		End:                 end,
		FreeFlowRoute:       waypoints,
		CongestionThreshold: threshold,
	}
	return nil
}

// applyEnv lets the environment override logging settings.
func (c *Config) applyEnv() {
	if level := Get("ROUTEWATCH_LOG_LEVEL", ""); level != "" {
		c.Logging.Level = level
	}
	if format := Get("ROUTEWATCH_LOG_FORMAT", ""); format != "" {
		c.Logging.Format = format
	}
}

// Validate checks every route and optional section.
func (c *Config) Validate() error {
	for _, key := range c.RouteNames() {
		if err := validate.Struct(c.Routes[key]); err != nil {
			return &domain.ConfigError{Msg: fmt.Sprintf("route %q", key), Err: err}
		}
	}

	if c.Notification != nil {
		if err := validate.Struct(c.Notification); err != nil {
			return &domain.ConfigError{Msg: "notification", Err: err}
		}
	}
	if err := validate.Struct(c.Cache); err != nil {
		return &domain.ConfigError{Msg: "cache", Err: err}
	}
	if c.Cache.Enabled() && c.Cache.DSN == "" {
		return &domain.ConfigError{Msg: fmt.Sprintf("cache backend %s requires a dsn", c.Cache.Backend)}
	}
	if c.Kafka != nil {
		if err := validate.Struct(c.Kafka); err != nil {
			return &domain.ConfigError{Msg: "kafka", Err: err}
		}
	}
	if c.SES != nil {
		if err := validate.Struct(c.SES); err != nil {
			return &domain.ConfigError{Msg: "ses", Err: err}
		}
	}
	if err := validate.Struct(c.API); err != nil {
		return &domain.ConfigError{Msg: "api", Err: err}
	}

	return nil
}

// Route returns the named route. Route names are matched case-insensitively.
func (c *Config) Route(name string) (domain.RouteConfig, error) {
	rc, ok := c.Routes[strings.ToLower(name)]
	if !ok {
		return domain.RouteConfig{}, fmt.Errorf("route %q: %w", name, domain.ErrRouteNotFound)
	}
	return rc, nil
}

// SetRoute replaces the named route.
func (c *Config) SetRoute(name string, rc domain.RouteConfig) {
	c.Routes[strings.ToLower(name)] = rc
}

// RouteNames returns the route keys in sorted order.
func (c *Config) RouteNames() []string {
	names := make([]string, 0, len(c.Routes))
	for name := range c.Routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProviderSettings decodes APIConfig into routing settings.
func (c *Config) ProviderSettings() (routing.Settings, error) {
	var s routing.Settings

	v := viper.New()
	if err := v.MergeConfigMap(c.APIConfig); err != nil {
		return s, &domain.ConfigError{Msg: "api_config", Err: err}
	}
	if err := v.Unmarshal(&s); err != nil {
		return s, &domain.ConfigError{Msg: "api_config", Err: err}
	}
	return s, nil
}

// ProviderName returns the configured provider identifier, lowercased.
func (c *Config) ProviderName() string {
	p, _ := c.APIConfig["provider"].(string)
	return strings.ToLower(strings.TrimSpace(p))
}

// Get returns the environment variable key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
