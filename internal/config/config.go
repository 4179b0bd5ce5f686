package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Bridge    BridgeConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"serverrewards"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	OptionsPath string `envconfig:"OPTIONS_PATH" default:"./config/serverrewards.yaml"`
}

// StorageConfig selects where documents live.
type StorageConfig struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"file"` // file, sqlite, postgres, mysql, or mongodb
	DataDir string `envconfig:"STORAGE_DATA_DIR" default:"./data"`
	Path    string `envconfig:"STORAGE_SQLITE_PATH" default:"./data/serverrewards.db"`

	// PostgreSQL settings
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresName     string `envconfig:"POSTGRES_DB" default:"serverrewards"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASS" default:""`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	// MySQL settings
	MySQLHost     string `envconfig:"MYSQL_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"MYSQL_PORT" default:"3306"`
	MySQLName     string `envconfig:"MYSQL_DB" default:"serverrewards"`
	MySQLUser     string `envconfig:"MYSQL_USER" default:"root"`
	MySQLPassword string `envconfig:"MYSQL_PASS" default:""`

	// MongoDB settings
	MongoURI        string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"serverrewards"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"documents"`

	SaveInterval  time.Duration `envconfig:"SAVE_INTERVAL" default:"5m"`
	PruneInterval time.Duration `envconfig:"COOLDOWN_PRUNE_INTERVAL" default:"30m"`
	ForceMigrate  bool          `envconfig:"FORCE_MIGRATE" default:"false"`
	AuditLogPath  string        `envconfig:"AUDIT_LOG_PATH" default:"./data/logs/serverrewards.log"`
}

// CacheConfig holds Redis and lookup-cache settings.
type CacheConfig struct {
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	BufferEnabled bool          `envconfig:"CACHE_BUFFER_ENABLED" default:"true"`
	FlushInterval time.Duration `envconfig:"CACHE_FLUSH_INTERVAL" default:"30s"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// BridgeConfig points at the game host's HTTP bridge.
type BridgeConfig struct {
	URL     string        `envconfig:"BRIDGE_URL" default:""`
	APIKey  string        `envconfig:"BRIDGE_API_KEY" default:""`
	Timeout time.Duration `envconfig:"BRIDGE_TIMEOUT" default:"5s"`
}

// RateLimitConfig limits player commands per user.
type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

// AuthConfig lists accepted API keys.
type AuthConfig struct {
	APIKeys []string `envconfig:"API_KEYS"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StorageConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.PostgresUser, s.PostgresPassword, s.PostgresHost, s.PostgresPort, s.PostgresName, s.PostgresSSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (s *StorageConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.MySQLUser, s.MySQLPassword, s.MySQLHost, s.MySQLPort, s.MySQLName)
}

// DocumentDir returns the directory the file backend writes to.
func (s *StorageConfig) DocumentDir() string {
	return filepath.Clean(s.DataDir)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
