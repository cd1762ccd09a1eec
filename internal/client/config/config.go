package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/chemtutor/internal/filex"
)

const (
	DefaultBaseURL    = "http://localhost:8000/api/"
	DefaultTimeout    = 60 * time.Second
	DefaultAuthScheme = "Bearer"
	DefaultLogLevel   = "warn"
)

// Config holds runtime settings for the ChemTutor CLI.
//
// Units: RequestTimeout is a time.Duration applied to every API call.
type Config struct {
	BaseURL        string        `env:"BASE_URL"`
	RequestTimeout time.Duration `env:"TIMEOUT"`
	AuthScheme     string        `env:"AUTH_SCHEME"`
	DatabasePath   string        `env:"DB_PATH"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = DefaultBaseURL
	c.RequestTimeout = DefaultTimeout
	c.AuthScheme = DefaultAuthScheme
	c.DatabasePath = filex.DefaultDataPath("chemtutor", "chemtutor.db")
	c.LogLevel = DefaultLogLevel
}

// LoadConfig constructs a Config from defaults, then overlays the config file
// (if -c/-config is given), CHEMTUTOR_* environment variables and finally
// command-line flags. Later sources win. Invalid input panics.
func LoadConfig() *Config {
	return loadConfig(os.Args[1:], env.ToMap(os.Environ()))
}

func loadConfig(args []string, environ map[string]string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseEnv(cfg, environ)
	parseFlags(cfg, args)
	return cfg
}
