// Package config loads process configuration from the environment, .env
// files and an optional omnisearch.yaml, and resolves per-source settings.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"omnisearch/internal/catalog"
)

// UserAgentVar is the environment variable holding the browser user agent.
const UserAgentVar = "USER_AGENT"

// searchURLVars names the base search URL variable for each source.
var searchURLVars = map[catalog.SourceKey]string{
	catalog.Film:  "FILM_SEARCH_URL",
	catalog.Anime: "ANIME_SEARCH_URL",
	catalog.Manga: "MANGA_SEARCH_URL",
	catalog.Book:  "BOOK_SEARCH_URL",
	catalog.Game:  "GAME_SEARCH_URL",
}

// SearchURLVar returns the environment variable that configures a source's
// base search URL.
func SearchURLVar(k catalog.SourceKey) string {
	return searchURLVars[k]
}

// Config holds the full application configuration.
type Config struct {
	UserAgent   string            `mapstructure:"user_agent"`
	Sources     map[string]string `mapstructure:"sources"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Log         LogConfig         `mapstructure:"log"`
	Server      ServerConfig      `mapstructure:"server"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
}

// BrowserConfig configures the shared headless browser.
type BrowserConfig struct {
	Headless bool          `mapstructure:"headless"`
	Bin      string        `mapstructure:"bin"`
	ProxyURL string        `mapstructure:"proxy_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DiagnosticsConfig configures where failure snapshots are written.
type DiagnosticsConfig struct {
	Dir string `mapstructure:"dir"`
}

// SourceConfig is the resolved, read-only configuration for one source.
type SourceConfig struct {
	Key       catalog.SourceKey
	BaseURL   string
	UserAgent string
}

// ErrMissingConfig is matched by every MissingConfigError.
var ErrMissingConfig = errors.New("missing configuration")

// MissingConfigError names the environment variable that was not set.
type MissingConfigError struct {
	Var string
}

func (e *MissingConfigError) Error() string {
	return e.Var + " is not defined in environment variables"
}

func (e *MissingConfigError) Is(target error) bool { return target == ErrMissingConfig }

// Resolve returns the settings for source k. When a required value is absent
// it returns a *MissingConfigError naming the variable; the base URL is
// checked before the user agent.
func (c *Config) Resolve(k catalog.SourceKey, needsUserAgent bool) (SourceConfig, error) {
	base := strings.TrimSpace(c.Sources[string(k)])
	if base == "" {
		name := SearchURLVar(k)
		if name == "" {
			name = strings.ToUpper(string(k)) + "_SEARCH_URL"
		}
		return SourceConfig{}, &MissingConfigError{Var: name}
	}
	sc := SourceConfig{Key: k, BaseURL: base}
	if needsUserAgent {
		ua := strings.TrimSpace(c.UserAgent)
		if ua == "" {
			return SourceConfig{}, &MissingConfigError{Var: UserAgentVar}
		}
		sc.UserAgent = ua
	}
	return sc, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Values already present in the environment are never overwritten and
// missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "config: load env file %s", envFile)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "config: load %s", f)
		}
	}
	return nil
}

// Load reads configuration from .env files, an optional omnisearch.yaml and
// the environment. Source settings are not validated here; see Resolve.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("omnisearch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.omnisearch")

	binds := map[string]string{
		"user_agent":        UserAgentVar,
		"browser.headless":  "BROWSER_HEADLESS",
		"browser.bin":       "BROWSER_BIN",
		"browser.proxy_url": "PROXY_URL",
		"browser.timeout":   "SCRAPE_TIMEOUT",
		"log.level":         "LOG_LEVEL",
		"log.format":        "LOG_FORMAT",
		"server.port":       "PORT",
		"diagnostics.dir":   "DIAGNOSTICS_DIR",
	}
	for _, k := range catalog.Keys() {
		binds["sources."+string(k)] = SearchURLVar(k)
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", env)
		}
	}

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", 60*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 3000)
	v.SetDefault("diagnostics.dir", ".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	// Unmarshal only sees nested keys that exist somewhere, so read the
	// bound source variables explicitly.
	cfg.Sources = make(map[string]string, len(searchURLVars))
	for _, k := range catalog.Keys() {
		cfg.Sources[string(k)] = v.GetString("sources." + string(k))
	}

	return &cfg, nil
}

// NewLogger builds a zap logger from cfg.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}
