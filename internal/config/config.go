package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/resume-sorter/internal/core/domain"
)

type Config struct {
	APIPort  string
	LogLevel string

	ConfigFile string

	PostgresDSN string

	NATSURL           string
	NATSSortSubject   string
	NATSResultSubject string

	SortRoot        string
	SortRequired    string
	SortDesired     string
	SortAllowedBase string
	SortExtensions  []string
	SortWorkers     int
	SortReportXLSX  bool
	SortReportDir   string

	FolderNames map[domain.Category]string
	Profiles    map[string]domain.KeywordProfile

	APIRateLimitRPS   float64
	APIRateLimitBurst int

	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	BreakerEnabled      bool

	WorkerMetricsPort string
}

// Load reads the process environment, after merging an optional .env file.
// Variables already set in the environment win over .env entries.
func Load() Config {
	_ = godotenv.Load(mustEnv("DOTENV_PATH", ".env"))

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		ConfigFile: mustEnv("CONFIG_FILE", ""),

		PostgresDSN: mustEnv("POSTGRES_DSN", ""),

		NATSURL:           mustEnv("NATS_URL", ""),
		NATSSortSubject:   mustEnv("NATS_SORT_SUBJECT", "resumes.sort.requested"),
		NATSResultSubject: mustEnv("NATS_RESULT_SUBJECT", "resumes.sort.completed"),

		SortRoot:        mustEnv("SORT_ROOT", ""),
		SortRequired:    mustEnv("SORT_REQUIRED", ""),
		SortDesired:     mustEnv("SORT_DESIRED", ""),
		SortAllowedBase: mustEnv("SORT_ALLOWED_BASE", ""),
		SortExtensions:  mustEnvList("SORT_EXTENSIONS", []string{".pdf"}),
		SortWorkers:     mustEnvInt("SORT_WORKERS", 1),
		SortReportXLSX:  mustEnvBool("SORT_REPORT_XLSX", false),
		SortReportDir:   mustEnv("SORT_REPORT_DIR", ""),

		FolderNames: map[domain.Category]string{},
		Profiles:    map[string]domain.KeywordProfile{},

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),

		RetryMaxAttempts:    mustEnvInt("RETRY_MAX_ATTEMPTS", 3),
		RetryInitialBackoff: time.Duration(mustEnvInt("RETRY_INITIAL_BACKOFF_MS", 100)) * time.Millisecond,
		BreakerEnabled:      mustEnvBool("BREAKER_ENABLED", true),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

// LoadWithFile is Load followed by ApplyFile for CONFIG_FILE when it is set.
func LoadWithFile() (Config, error) {
	cfg := Load()
	if cfg.ConfigFile == "" {
		return cfg, nil
	}
	if err := cfg.ApplyFile(cfg.ConfigFile); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type fileConfig struct {
	Folders    map[string]string                `yaml:"folders"`
	Extensions []string                         `yaml:"extensions"`
	Workers    int                              `yaml:"workers"`
	Profiles   map[string]domain.KeywordProfile `yaml:"profiles"`
}

// ApplyFile overlays folder names, extensions, worker count and keyword
// profiles from a YAML file. Folder keys are category labels.
func (c *Config) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if c.FolderNames == nil {
		c.FolderNames = map[domain.Category]string{}
	}
	for key, name := range fc.Folders {
		category := domain.Category(key)
		if !category.Valid() {
			return fmt.Errorf("config file: unknown category %q in folders", key)
		}
		c.FolderNames[category] = name
	}
	if err := domain.CheckFolderNames(c.FolderNames); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	if len(fc.Extensions) > 0 {
		c.SortExtensions = fc.Extensions
	}
	if fc.Workers > 0 {
		c.SortWorkers = fc.Workers
	}

	if c.Profiles == nil {
		c.Profiles = map[string]domain.KeywordProfile{}
	}
	for name, profile := range fc.Profiles {
		if domain.ParseKeywords(profile.Required).Empty() {
			return fmt.Errorf("config file: profile %q has no required keywords", name)
		}
		c.Profiles[name] = profile
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
