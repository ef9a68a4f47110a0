package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	ServerPort   string `yaml:"port"`
	DatabaseType string `yaml:"database_type"`
	DatabasePath string `yaml:"database_path"`
	DatabaseURL  string `yaml:"database_url"`

	SessionDuration        time.Duration `yaml:"session_duration"`
	SessionCookieName      string        `yaml:"session_cookie_name"`
	SessionCleanupInterval time.Duration `yaml:"session_cleanup_interval"`

	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable it behind a proxy that overwrites them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`

	UploadMaxSize int64         `yaml:"upload_max_size"`
	Storage       StorageConfig `yaml:"storage"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// StorageConfig selects where uploaded game images are written
type StorageConfig struct {
	Backend string `yaml:"backend"` // local or s3

	// local
	UploadDir     string `yaml:"upload_dir"`
	UploadBaseURL string `yaml:"upload_base_url"`

	// s3 (any S3-compatible endpoint, e.g. R2 or MinIO)
	S3Bucket          string `yaml:"s3_bucket"`
	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"`
	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`
	S3PublicBaseURL   string `yaml:"s3_public_base_url"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from an optional .env file, an optional YAML file
// named by CONFIG_FILE, and finally environment variables, in that order of
// increasing precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// LoadFile reads a YAML configuration file, expanding ${VAR} references
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.ServerPort = getEnv("PORT", c.ServerPort)
	c.DatabaseType = getEnv("DB_TYPE", c.DatabaseType)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SessionCookieName = getEnv("SESSION_COOKIE_NAME", c.SessionCookieName)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.UploadDir = getEnv("UPLOAD_DIR", c.Storage.UploadDir)
	c.Storage.UploadBaseURL = getEnv("UPLOAD_BASE_URL", c.Storage.UploadBaseURL)
	c.Storage.S3Bucket = getEnv("S3_BUCKET", c.Storage.S3Bucket)
	c.Storage.S3Region = getEnv("S3_REGION", c.Storage.S3Region)
	c.Storage.S3Endpoint = getEnv("S3_ENDPOINT", c.Storage.S3Endpoint)
	c.Storage.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.Storage.S3AccessKeyID)
	c.Storage.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", c.Storage.S3SecretAccessKey)
	c.Storage.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", c.Storage.S3PublicBaseURL)

	var err error
	if c.SessionDuration, err = getDuration("SESSION_DURATION", c.SessionDuration); err != nil {
		return err
	}
	if c.SessionCleanupInterval, err = getDuration("SESSION_CLEANUP_INTERVAL", c.SessionCleanupInterval); err != nil {
		return err
	}
	if c.LoginRateWindow, err = getDuration("LOGIN_RATE_WINDOW", c.LoginRateWindow); err != nil {
		return err
	}
	if c.LoginRateLimit, err = getInt("LOGIN_RATE_LIMIT", c.LoginRateLimit); err != nil {
		return err
	}
	if c.TrustProxyHeaders, err = getBool("TRUST_PROXY_HEADERS", c.TrustProxyHeaders); err != nil {
		return err
	}
	size, err := getInt("UPLOAD_MAX_SIZE", int(c.UploadMaxSize))
	if err != nil {
		return err
	}
	c.UploadMaxSize = int64(size)

	return nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
	if c.DatabaseType == "" {
		c.DatabaseType = "sqlite"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "./gametracker.db"
	}
	if c.SessionDuration == 0 {
		c.SessionDuration = 30 * 24 * time.Hour
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = "game-tracker-session"
	}
	// SessionCleanupInterval stays zero unless set: the sweep is opt-in.
	if c.LoginRateLimit == 0 {
		c.LoginRateLimit = 10
	}
	if c.LoginRateWindow == 0 {
		c.LoginRateWindow = time.Minute
	}
	if c.UploadMaxSize == 0 {
		c.UploadMaxSize = 5 * 1024 * 1024 // 5MB
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.UploadDir == "" {
		c.Storage.UploadDir = "./uploads"
	}
	if c.Storage.UploadBaseURL == "" {
		c.Storage.UploadBaseURL = "/uploads"
	}
	if c.Storage.S3Region == "" {
		c.Storage.S3Region = "auto"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
