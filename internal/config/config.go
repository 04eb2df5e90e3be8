package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when CONFIG_PATH is not set
const DefaultConfigPath = "configs/config.yaml"

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8251"`
		Host         string        `yaml:"host" default:"127.0.0.1"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"0s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
		BodyLimit    int64         `yaml:"body_limit" default:"1048576"`
	} `yaml:"server"`

	Agent struct {
		MaxProperties int     `yaml:"max_properties" default:"25"`
		Engine        string  `yaml:"engine" default:"firecrawl"`
		ContentBudget float64 `yaml:"content_budget" default:"3"` // characters per LLM token
	} `yaml:"agent"`

	LLM struct {
		Provider    string        `yaml:"provider" default:"claude"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model" default:"claude-3-7-sonnet-latest"`
		MaxTokens   int           `yaml:"max_tokens" default:"4096"`
		Temperature float32       `yaml:"temperature" default:"0.1"`
		Timeout     time.Duration `yaml:"timeout" default:"120s"`
		MaxRetries  int           `yaml:"max_retries" default:"2"`
	} `yaml:"llm"`

	Scraper struct {
		RateLimit           int           `yaml:"rate_limit" default:"30"` // requests per minute per domain
		Burst               int           `yaml:"burst" default:"5"`
		CircuitMaxFailures  int           `yaml:"circuit_max_failures" default:"5"`
		CircuitResetTimeout time.Duration `yaml:"circuit_reset_timeout" default:"30s"`
	} `yaml:"scraper"`

	Firecrawl struct {
		APIKey     string   `yaml:"api_key"`
		APIURL     string   `yaml:"api_url" default:"https://api.firecrawl.dev"`
		MaxRetries int      `yaml:"max_retries" default:"3"`
		Formats    []string `yaml:"formats" default:"markdown"`
	} `yaml:"firecrawl"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`

		Adapters []LogAdapter `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		Enabled  bool          `yaml:"enabled" default:"false"`
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"30m"`
	} `yaml:"redis"`
}

// LogAdapter configures one logging output
type LogAdapter struct {
	Name    string                 `yaml:"name"`
	Type    string                 `yaml:"type"`
	Enabled bool                   `yaml:"enabled"`
	Options map[string]interface{} `yaml:"options"`
}

// Credentials holds the two API keys the analysis needs.
// It is built once at startup and never mutated afterwards.
type Credentials struct {
	ScrapingKey string
	LLMKey      string
}

// HasScrapingKey reports whether the Firecrawl key is configured
func (c Credentials) HasScrapingKey() bool {
	return c.ScrapingKey != ""
}

// HasLLMKey reports whether the language-model key is configured
func (c Credentials) HasLLMKey() bool {
	return c.LLMKey != ""
}

// Credentials returns an immutable copy of the configured API keys
func (c *Config) Credentials() Credentials {
	return Credentials{
		ScrapingKey: c.Firecrawl.APIKey,
		LLMKey:      c.LLM.APIKey,
	}
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // keep the placeholder if the variable is unset
	})

	s = plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// ResolveConfigPath returns CONFIG_PATH or the default location
func ResolveConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return DefaultConfigPath
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env values win over the process environment; a missing file is fine
	_ = godotenv.Overload()

	config := NewDefaultConfig()

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

// NewDefaultConfig returns a configuration populated with defaults only
func NewDefaultConfig() *Config {
	config := &Config{}

	config.Server.Port = 8251
	config.Server.Host = "127.0.0.1"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.BodyLimit = 1024 * 1024

	config.Agent.MaxProperties = 25
	config.Agent.Engine = "firecrawl"
	config.Agent.ContentBudget = 3

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-7-sonnet-latest"
	config.LLM.MaxTokens = 4096
	config.LLM.Temperature = 0.1
	config.LLM.Timeout = 120 * time.Second
	config.LLM.MaxRetries = 2

	config.Scraper.RateLimit = 30
	config.Scraper.Burst = 5
	config.Scraper.CircuitMaxFailures = 5
	config.Scraper.CircuitResetTimeout = 30 * time.Second

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.MaxRetries = 3
	config.Firecrawl.Formats = []string{"markdown"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second
	config.Redis.CacheTTL = 30 * time.Minute

	return config
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

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	// ANTHROPIC_API_KEY is only a fallback; LLM_API_KEY wins when both are set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		c.Redis.Enabled = redisEnabled == "true" || redisEnabled == "1"
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

	if cacheTTL := os.Getenv("REDIS_CACHE_TTL"); cacheTTL != "" {
		if ttl, err := time.ParseDuration(cacheTTL); err == nil {
			c.Redis.CacheTTL = ttl
		}
	}

	if rateLimit := os.Getenv("SCRAPER_RATE_LIMIT"); rateLimit != "" {
		if rpm, err := strconv.Atoi(rateLimit); err == nil && rpm > 0 {
			c.Scraper.RateLimit = rpm
		}
	}

	if maxProperties := os.Getenv("AGENT_MAX_PROPERTIES"); maxProperties != "" {
		if n, err := strconv.Atoi(maxProperties); err == nil && n > 0 {
			c.Agent.MaxProperties = n
		}
	}
}
