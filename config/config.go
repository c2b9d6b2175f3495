package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends understood by internal/storage.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type Config struct {
	API      APIConfig
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Log      LogConfig
}

// APIConfig points at the Merch KE backend.
type APIConfig struct {
	BaseURL string `envconfig:"MERCH_API_BASE_URL" default:"http://localhost:8080"`
	// Timeout is zero by default: requests are never cut short.
	Timeout time.Duration `envconfig:"MERCH_API_TIMEOUT" default:"0s"`
}

type ServerConfig struct {
	Port         int    `envconfig:"SERVER_PORT" default:"3000"`
	CookieSecure bool   `envconfig:"SERVER_COOKIE_SECURE" default:"false"`
	LoginPath    string `envconfig:"SERVER_LOGIN_PATH" default:"/auth/login"`
}

// StorageConfig selects where tokens and guest session ids are persisted.
type StorageConfig struct {
	Backend   string `envconfig:"STORAGE_BACKEND" default:"file"`
	FilePath  string `envconfig:"STORAGE_FILE_PATH"`
	KeyPrefix string `envconfig:"STORAGE_KEY_PREFIX" default:"merchke:"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	MongoURI        string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"merchke_storefront"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"storefront_kv"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"merchke"`
	Password string `envconfig:"DB_PASSWORD" default:"password"`
	DBName   string `envconfig:"DB_NAME" default:"merchke_storefront"`
	UseSSL   bool   `envconfig:"DB_USE_SSL" default:"false"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if cfg.Storage.FilePath == "" {
		cfg.Storage.FilePath = defaultCredentialsPath()
	}

	switch cfg.Storage.Backend {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres, StorageMongo:
	default:
		return Config{}, fmt.Errorf("load config: unknown storage backend %q", cfg.Storage.Backend)
	}

	return cfg, nil
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".merchke-credentials.json"
	}
	return dir + string(os.PathSeparator) + "merchke" + string(os.PathSeparator) + "credentials.json"
}
