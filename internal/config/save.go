package config

import (
	"route-watch-service/internal/domain"
	"route-watch-service/internal/platform/logging"

	"github.com/spf13/viper"
)

// Save writes the configuration to path using the route.<name> layout. The
// format follows the extension and defaults to TOML.
func (c *Config) Save(path string) error {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))

	format := formatFor(path)
	if format == "" {
		format = "toml"
	}
	v.SetConfigType(format)

	for name, rc := range c.Routes {
		v.Set(routePrefix+name, routeMap(rc))
	}

	if c.Notification != nil {
		v.Set(keyNotification, map[string]any{
			"tool":     c.Notification.Tool,
			"cli_args": c.Notification.CLIArgs,
		})
	}

	for k, val := range c.APIConfig {
		v.Set(k, val)
	}

	if c.Logging != (logging.Config{}) && c.Logging != logging.DefaultConfig() {
		v.Set(keyLogging, map[string]any{
			"level":  c.Logging.Level,
			"format": c.Logging.Format,
			"output": c.Logging.Output,
		})
	}
	if c.Cache != (CacheConfig{}) {
		v.Set(keyCache, map[string]any{
			"backend": c.Cache.Backend,
			"dsn":     c.Cache.DSN,
			"ttl":     c.Cache.TTL.String(),
		})
	}
	if c.Kafka != nil {
		v.Set(keyKafka, map[string]any{
			"brokers": c.Kafka.Brokers,
			"topic":   c.Kafka.Topic,
		})
	}
	if c.SES != nil {
		v.Set(keySES, map[string]any{
			"from":    c.SES.From,
			"to":      c.SES.To,
			"subject": c.SES.Subject,
			"region":  c.SES.Region,
		})
	}
	if c.API.Port != 0 {
		v.Set(keyAPI, map[string]any{"port": c.API.Port})
	}

	if err := v.WriteConfigAs(path); err != nil {
		return &domain.ConfigError{Msg: "write configuration file", Err: err}
	}
	return nil
}

func routeMap(rc domain.RouteConfig) map[string]any {
	waypoints := make([][]float64, 0, len(rc.FreeFlowRoute))
	for _, wp := range rc.FreeFlowRoute {
		waypoints = append(waypoints, wp.Pair())
	}

	return map[string]any{
		"name":                 rc.Name,
		"start_latlong":        rc.Start.Pair(),
		"end_latlong":          rc.End.Pair(),
		"free_flow_route":      waypoints,
		"congestion_threshold": rc.CongestionThreshold,
	}
}
