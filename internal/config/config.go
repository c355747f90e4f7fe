package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
)

type Config struct {
	AppPort string

	StoreBackend    string
	StoreKey        string
	StoreMaxRetries int
	SeedDemo        bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	SQLitePath string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int

	MetricsNamespace  string
	PortfolioSchedule string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads the environment. Values from a .env file in the working
// directory are used for keys that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		StoreBackend:    strings.ToLower(getenv("STORE_BACKEND", BackendMemory)),
		StoreKey:        getenv("STORE_KEY", "loanmarket"),
		StoreMaxRetries: getenvInt("STORE_MAX_RETRIES", 3),
		SeedDemo:        getenvBool("SEED_DEMO", true),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "loanmarket"),
		MySQLUser: getenv("MYSQL_USER", "loanmarket"),
		MySQLPass: getenv("MYSQL_PASS", "loanmarket"),

		SQLitePath: getenv("SQLITE_PATH", "loanmarket.db"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		MetricsNamespace:  getenv("METRICS_NAMESPACE", "loanmarket"),
		PortfolioSchedule: getenv("PORTFOLIO_SCHEDULE", "@every 1m"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.StoreMaxRetries < 0 {
		return fmt.Errorf("invalid STORE_MAX_RETRIES %d", c.StoreMaxRetries)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("STORE_BACKEND=redis requires REDIS_ADDR")
		}
	case BackendMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("STORE_BACKEND=sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// IdempotencyTTL is how long a request id stays reserved.
func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
