package config

import (
	"errors"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"vesselradar"`
	Port                          int      `env:"PORT" env-default:"3000"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"60"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Database
	DatabaseHost                string        `env:"DB_HOST" env-default:"localhost"`
	DatabasePort                int           `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:"postgres"`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"vesselradar"`
	DatabaseSSLMode             string        `env:"DB_SSL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    uint          `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrateOnStart      bool          `env:"DB_MIGRATE_ON_START" env-default:"true"`

	// Auth
	AuthEnabled   bool   `env:"AUTH_ENABLED" env-default:"false"`
	AuthIssuerURL string `env:"AUTH_ISSUER_URL" env-default:""`
	AuthClientID  string `env:"AUTH_CLIENT_ID" env-default:""`

	// Redis
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// Kafka
	KafkaEnabled       bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers       []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaPositionTopic string   `env:"KAFKA_POSITION_TOPIC" env-default:"vessel-positions"`
	KafkaSyncTopic     string   `env:"KAFKA_SYNC_TOPIC" env-default:"vessel-sync-runs"`

	// AIS provider
	AISBaseURL           string        `env:"AIS_BASE_URL" env-default:"https://vesselfinder1.p.rapidapi.com"`
	AISHost              string        `env:"AIS_HOST" env-default:"vesselfinder1.p.rapidapi.com"`
	AISAPIKey            string        `env:"RAPIDAPI_KEY" env-default:""`
	AISTimeout           time.Duration `env:"AIS_TIMEOUT" env-default:"10s"`
	AISMaxResponseBytes  int64         `env:"AIS_MAX_RESPONSE_BYTES" env-default:"1048576"`
	AISRateLimitRequests int           `env:"AIS_RATE_LIMIT_REQUESTS" env-default:"30"`
	AISRateLimitWindow   time.Duration `env:"AIS_RATE_LIMIT_WINDOW" env-default:"1m"`
	AISRateLimitEnabled  bool          `env:"AIS_RATE_LIMIT_ENABLED" env-default:"true"`

	// Location freshness
	LocationCacheTTL      time.Duration `env:"LOCATION_CACHE_TTL" env-default:"6h"`
	LocationMinRefreshAge time.Duration `env:"LOCATION_MIN_REFRESH_AGE" env-default:"1h"`

	// Static lookup tables override file (YAML). Compiled defaults are used when empty.
	LookupTablesPath string `env:"LOOKUP_TABLES_PATH" env-default:""`

	// Scheduled batch sync
	SyncEnabled    bool          `env:"SYNC_ENABLED" env-default:"false"`
	SyncInterval   time.Duration `env:"SYNC_INTERVAL" env-default:"1h"`
	SyncLockTTL    time.Duration `env:"SYNC_LOCK_TTL" env-default:"15m"`
	SyncRunOnStart bool          `env:"SYNC_RUN_ON_START" env-default:"false"`

	// Tracing
	OTLPEnabled  bool   `env:"OTLP_ENABLED" env-default:"false"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure bool   `env:"OTLP_INSECURE" env-default:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
