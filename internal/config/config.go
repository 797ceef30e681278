package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RendererHTTP    = "http"
	RendererBrowser = "browser"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string

	OpenAIAPIKey string
	OpenAIModel  string

	GoogleAPIKey string
	GoogleCX     string
	BingAPIKey   string

	RegistryURL       string
	RegistryRenderer  string
	RegistryTimeout   time.Duration
	RegistryPageDelay time.Duration
	RegistryWorkers   int
	RegistryMaxPages  int
	RegistryPageSize  int

	SearchTimeout time.Duration
	SearchDelay   time.Duration
	SearchLLM     bool

	TermsFile string

	LogLevel  string
	LogFormat string
}

// LoadConfig reads configuration from environment variables (.env file)
func LoadConfig() (*Config, error) {
	// A missing .env is fine, production sets the environment directly.
	_ = godotenv.Load()

	timeout, err := getEnvDuration("REGISTRY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	pageDelay, err := getEnvDuration("REGISTRY_PAGE_DELAY", 2*time.Second)
	if err != nil {
		return nil, err
	}
	searchTimeout, err := getEnvDuration("SEARCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	searchDelay, err := getEnvDuration("SEARCH_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("REGISTRY_WORKERS", 2)
	if err != nil {
		return nil, err
	}
	maxPages, err := getEnvInt("REGISTRY_MAX_PAGES", 10)
	if err != nil {
		return nil, err
	}
	pageSize, err := getEnvInt("REGISTRY_PAGE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	searchLLM, err := getEnvBool("SEARCH_LLM", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		Port:        getEnv("PORT", "8080"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),

		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		GoogleCX:     getEnv("GOOGLE_CX", ""),
		BingAPIKey:   getEnv("BING_API_KEY", ""),

		RegistryURL:       getEnv("REGISTRY_URL", "https://dati.zva.gov.lv/zalu-registrs/lieltirgotavas"),
		RegistryRenderer:  strings.ToLower(getEnv("REGISTRY_RENDERER", RendererHTTP)),
		RegistryTimeout:   timeout,
		RegistryPageDelay: pageDelay,
		RegistryWorkers:   workers,
		RegistryMaxPages:  maxPages,
		RegistryPageSize:  pageSize,

		SearchTimeout: searchTimeout,
		SearchDelay:   searchDelay,
		SearchLLM:     searchLLM,

		TermsFile: getEnv("TERMS_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}, nil
}

// Validate reports every setting that cannot work.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.ParseRequestURI(c.RegistryURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("REGISTRY_URL %q is not an absolute URL", c.RegistryURL))
	}
	if c.RegistryRenderer != RendererHTTP && c.RegistryRenderer != RendererBrowser {
		errs = append(errs, fmt.Errorf("REGISTRY_RENDERER must be %q or %q, got %q", RendererHTTP, RendererBrowser, c.RegistryRenderer))
	}
	if c.RegistryWorkers < 1 {
		errs = append(errs, errors.New("REGISTRY_WORKERS must be at least 1"))
	}
	if c.RegistryMaxPages < 1 {
		errs = append(errs, errors.New("REGISTRY_MAX_PAGES must be at least 1"))
	}
	if c.RegistryPageSize < 1 {
		errs = append(errs, errors.New("REGISTRY_PAGE_SIZE must be at least 1"))
	}
	if c.RegistryTimeout <= 0 || c.SearchTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.RegistryPageDelay < 0 || c.SearchDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if (c.GoogleAPIKey == "") != (c.GoogleCX == "") {
		errs = append(errs, errors.New("GOOGLE_API_KEY and GOOGLE_CX must be set together"))
	}

	return errors.Join(errs...)
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// getEnvDuration accepts Go durations ("1500ms") or plain milliseconds.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	if !exists || value == "" {
		return defaultValue, nil
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
