// Package config loads the scraper configuration via Viper.
//
// Values come, by increasing priority, from defaults, an optional YAML/TOML/JSON
// config file, STANDINGS_* environment variables and command-line flags bound
// by the cli package.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pfrederiksen/standings-scraper/internal/fetcher"
	"github.com/pfrederiksen/standings-scraper/internal/logger"
	"github.com/pfrederiksen/standings-scraper/internal/scraper"
)

const (
	DefaultSourceURL = "https://competitions.ffbb.com/ligues/guy/comites/0973/clubs/guy0973007/equipes/200000005178873/classement"
	DefaultOutput    = "data.json"
	EnvPrefix        = "STANDINGS"
	configName       = "standings"
)

// Config captures all knobs of a run
type Config struct {
	SourceURL  string        `mapstructure:"source_url"`
	OutputFile string        `mapstructure:"output_file"`
	Fetch      FetchConfig   `mapstructure:"fetch"`
	Extract    ExtractConfig `mapstructure:"extract"`
	Publish    PublishConfig `mapstructure:"publish"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
	Log        LogConfig     `mapstructure:"log"`
}

// FetchConfig selects transports and request headers
type FetchConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
	Transport      string        `mapstructure:"transport"`
	Fallback       string        `mapstructure:"fallback"`
}

// ExtractConfig holds the header keywords used to find the standings table
type ExtractConfig struct {
	PointsMarkers []string `mapstructure:"points_markers"`
	LabelMarkers  []string `mapstructure:"label_markers"`
}

// PublishConfig enables the upload of the snapshot to Cloud Storage
type PublishConfig struct {
	GCSBucket    string `mapstructure:"gcs_bucket"`
	Object       string `mapstructure:"object"`
	CacheControl string `mapstructure:"cache_control"`
}

// MetricsConfig points at the Prometheus textfile to write, if any
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// New returns a Viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source_url", DefaultSourceURL)
	v.SetDefault("output_file", DefaultOutput)
	v.SetDefault("fetch.timeout", fetcher.DefaultTimeout)
	v.SetDefault("fetch.user_agent", fetcher.DefaultUserAgent)
	v.SetDefault("fetch.accept_language", fetcher.DefaultAcceptLanguage)
	v.SetDefault("fetch.transport", fetcher.NameColly)
	v.SetDefault("fetch.fallback", fetcher.NameHTTP)
	v.SetDefault("extract.points_markers", scraper.DefaultPointsMarkers)
	v.SetDefault("extract.label_markers", scraper.DefaultLabelMarkers)
	v.SetDefault("publish.gcs_bucket", "")
	v.SetDefault("publish.object", DefaultOutput)
	v.SetDefault("publish.cache_control", "public, max-age=300")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", string(logger.LevelInfo))
	v.SetDefault("log.development", false)
}

// ReadFile reads path, or searches the default locations when path is empty.
// A missing file in the default locations is not an error.
func ReadFile(v *viper.Viper, path string) (string, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/standings-scraper")
		v.AddConfigPath("/etc/standings-scraper")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Fetch.Transport = strings.ToLower(strings.TrimSpace(cfg.Fetch.Transport))
	cfg.Fetch.Fallback = strings.ToLower(strings.TrimSpace(cfg.Fetch.Fallback))
	if cfg.Fetch.Fallback == "none" {
		cfg.Fetch.Fallback = ""
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures the configuration is usable
func (c Config) Validate() error {
	if strings.TrimSpace(c.SourceURL) == "" {
		return fmt.Errorf("source_url is required")
	}
	u, err := url.Parse(c.SourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source_url must be an absolute http(s) URL: %q", c.SourceURL)
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("output_file is required")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if !fetcher.ValidName(c.Fetch.Transport) {
		return fmt.Errorf("fetch.transport must be one of %s, got %q",
			strings.Join(fetcher.Names, ", "), c.Fetch.Transport)
	}
	if c.Fetch.Fallback != "" {
		if !fetcher.ValidName(c.Fetch.Fallback) {
			return fmt.Errorf("fetch.fallback must be empty or one of %s, got %q",
				strings.Join(fetcher.Names, ", "), c.Fetch.Fallback)
		}
		if c.Fetch.Fallback == c.Fetch.Transport {
			return fmt.Errorf("fetch.fallback must differ from fetch.transport (%s)", c.Fetch.Transport)
		}
	}
	if c.Publish.GCSBucket != "" && strings.TrimSpace(c.Publish.Object) == "" {
		return fmt.Errorf("publish.object is required when publish.gcs_bucket is set")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// FetcherConfig converts the fetch section for the fetcher package
func (c Config) FetcherConfig() fetcher.Config {
	return fetcher.Config{
		UserAgent:      c.Fetch.UserAgent,
		AcceptLanguage: c.Fetch.AcceptLanguage,
		Timeout:        c.Fetch.Timeout,
	}
}
