package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Workers struct {
		PoolSize   int           `yaml:"pool_size"`
		QueueSize  int           `yaml:"queue_size"`
		RateLimit  int           `yaml:"rate_limit"` // requests per minute per domain
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
	} `yaml:"workers"`

	Scraper struct {
		UserAgent      string        `yaml:"user_agent"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"scraper"`

	Orchestrator struct {
		ErrorBackoff        time.Duration `yaml:"error_backoff"`
		DefaultAutoInterval int           `yaml:"default_auto_interval"`  // minutes
		DefaultWatcherHours int           `yaml:"default_watcher_hours"`
	} `yaml:"orchestrator"`

	Geocode struct {
		Enabled bool          `yaml:"enabled"`
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"geocode"`

	Callback struct {
		Enabled    bool          `yaml:"enabled"`
		URL        string        `yaml:"url"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
	} `yaml:"callback"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`

	Retention struct {
		JobLogAge     time.Duration `yaml:"job_log_age"`
		SweepSchedule string        `yaml:"sweep_schedule"` // cron spec
	} `yaml:"retention"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Workers.PoolSize = 4
	config.Workers.QueueSize = 50
	config.Workers.RateLimit = 30
	config.Workers.Timeout = 10 * time.Minute
	config.Workers.MaxRetries = 3

	config.Scraper.RequestTimeout = 30 * time.Second
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	config.Orchestrator.ErrorBackoff = 5 * time.Minute
	config.Orchestrator.DefaultAutoInterval = 60
	config.Orchestrator.DefaultWatcherHours = 6

	config.Geocode.BaseURL = "https://nominatim.openstreetmap.org/search"
	config.Geocode.Timeout = 10 * time.Second

	config.Callback.Timeout = 30 * time.Second
	config.Callback.MaxRetries = 3

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Postgres.URL = "postgres://localhost:5432/propscout"

	config.Retention.JobLogAge = 7 * 24 * time.Hour
	config.Retention.SweepSchedule = "@every 1h"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if userAgent := os.Getenv("SCRAPER_USER_AGENT"); userAgent != "" {
		c.Scraper.UserAgent = userAgent
	}

	if timeout := os.Getenv("SCRAPER_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Scraper.RequestTimeout = d
		}
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if pgURL := os.Getenv("DATABASE_URL"); pgURL != "" {
		c.Postgres.URL = pgURL
	}

	if geocodeKey := os.Getenv("GEOCODE_API_KEY"); geocodeKey != "" {
		c.Geocode.APIKey = geocodeKey
		c.Geocode.Enabled = true
	}

	if geocodeURL := os.Getenv("GEOCODE_BASE_URL"); geocodeURL != "" {
		c.Geocode.BaseURL = geocodeURL
	}

	if callbackURL := os.Getenv("CALLBACK_URL"); callbackURL != "" {
		c.Callback.URL = callbackURL
		c.Callback.Enabled = true
	}

	if callbackTimeout := os.Getenv("CALLBACK_TIMEOUT"); callbackTimeout != "" {
		if d, err := time.ParseDuration(callbackTimeout); err == nil {
			c.Callback.Timeout = d
		}
	}

	if backoff := os.Getenv("ORCHESTRATOR_ERROR_BACKOFF"); backoff != "" {
		if d, err := time.ParseDuration(backoff); err == nil {
			c.Orchestrator.ErrorBackoff = d
		}
	}

	if poolSize := os.Getenv("WORKER_POOL_SIZE"); poolSize != "" {
		if n, err := strconv.Atoi(poolSize); err == nil {
			c.Workers.PoolSize = n
		}
	}

	if rateLimit := os.Getenv("WORKER_RATE_LIMIT"); rateLimit != "" {
		if n, err := strconv.Atoi(rateLimit); err == nil {
			c.Workers.RateLimit = n
		}
	}
}
