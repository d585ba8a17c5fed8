package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// MinBcryptCost is the lowest work factor accepted for password hashing.
const MinBcryptCost = 12

// Config holds everything the service needs at startup.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	Port          string `env:"PORT,default=8080"`
	DBDriver      string `env:"DB_DRIVER,default=sqlite3"`
	DBDSN         string `env:"DB_DSN,default=./flashplan.db?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"`
	DBHost        string `env:"DB_HOST"`
	DBPort        string `env:"DB_PORT,default=5432"`
	DBUser        string `env:"DB_USER"`
	DBPassword    string `env:"DB_PASSWORD"`
	DBName        string `env:"DB_NAME,default=flashplan"`
	MigrationsDir string `env:"MIGRATIONS_DIR,default=./database/migrations"`

	CacheType     string        `env:"CACHE_TYPE,default=memory"`
	RedisAddr     string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB,default=0"`
	PlanCacheTTL  time.Duration `env:"PLAN_CACHE_TTL,default=5m"`

	SessionBackend string        `env:"SESSION_BACKEND,default=sql"`
	SessionTTL     time.Duration `env:"SESSION_TTL,default=720h"`
	SessionPurge   time.Duration `env:"SESSION_PURGE_INTERVAL,default=1h"`
	CookieSecure   bool          `env:"COOKIE_SECURE,default=false"`

	BcryptCost        int `env:"BCRYPT_COST,default=12"`
	AuthRatePerSecond int `env:"AUTH_RATE_PER_SECOND,default=5"`
	AuthRateBurst     int `env:"AUTH_RATE_BURST,default=10"`
}

// Load reads .env (if present) and decodes the environment into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// a missing .env is normal outside local development
		_ = godotenv.Load(envFile)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envdecode cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3":
	case "postgres":
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.SessionBackend {
	case "sql", "redis":
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.CacheType {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("unsupported CACHE_TYPE %q", c.CacheType)
	}
	if c.BcryptCost < MinBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d, got %d", MinBcryptCost, c.BcryptCost)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.AuthRatePerSecond <= 0 || c.AuthRateBurst <= 0 {
		return fmt.Errorf("AUTH_RATE_PER_SECOND and AUTH_RATE_BURST must be positive")
	}
	return nil
}
