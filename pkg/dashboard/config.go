package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g.
// DASHBOARD_DATASET_URL or DASHBOARD_HTTP_ADDR.
const EnvPrefix = "DASHBOARD"

type Config struct {
	Dataset    SourceConfig `mapstructure:"dataset"`
	Boundaries SourceConfig `mapstructure:"boundaries"`
	HTTP       HTTPConfig   `mapstructure:"http"`
	Fetch      FetchConfig  `mapstructure:"fetch"`
	Log        LogConfig    `mapstructure:"log"`
	Chart      ChartConfig  `mapstructure:"chart"`
	Map        MapConfig    `mapstructure:"map"`
}

type SourceConfig struct {
	URL string `mapstructure:"url"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type FetchConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ChartConfig struct {
	Color string `mapstructure:"color"`
}

type MapConfig struct {
	Colors []string `mapstructure:"colors"`
}

// NewViper returns a viper instance with every key defaulted, so that each
// one can also be set from the environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("dataset.url", "http://localhost/api.php")
	v.SetDefault("boundaries.url", "countries.geo.json")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("chart.color", stats.DefaultChartColor)
	v.SetDefault("map.colors", geo.DefaultPalette)
	return v
}

// LoadConfig reads the optional YAML file at path on top of the defaults
// and environment already set up on v.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Dataset.URL == "" {
		errs = append(errs, errors.New("dataset.url is required"))
	}
	if c.Boundaries.URL == "" {
		errs = append(errs, errors.New("boundaries.url is required"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if _, err := geo.NewScale(c.Map.Colors, 1); err != nil {
		errs = append(errs, fmt.Errorf("map.colors: %w", err))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not json or console", c.Log.Format))
	}
	return errors.Join(errs...)
}
