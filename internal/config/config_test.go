package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORE_BACKEND", "STORE_MAX_RETRIES", "SEED_DEMO", "REDIS_ADDR", "IDEMPOTENCY_TTL_SECONDS"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppPort != "8080" || c.StoreBackend != BackendMemory || c.StoreMaxRetries != 3 || !c.SeedDemo {
		t.Fatalf("defaults = %+v", c)
	}
	if c.IdempotencyTTL() != 300*time.Second {
		t.Fatalf("ttl = %v", c.IdempotencyTTL())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate defaults: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("STORE_MAX_RETRIES", "7")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "notanumber")

	c := Load()
	if c.StoreBackend != BackendRedis || c.RedisDB != 2 || c.StoreMaxRetries != 7 || c.SeedDemo {
		t.Fatalf("overrides = %+v", c)
	}
	if c.IdempTTLSecs != 300 {
		t.Fatalf("unparsable int should keep default, got %d", c.IdempTTLSecs)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			AppPort: "8080", StoreBackend: BackendMemory, IdempTTLSecs: 60,
			MySQLHost: "db", MySQLPort: "3306", MySQLDB: "x", MySQLUser: "u",
			SQLitePath: "x.db",
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "memory ok", mutate: func(*Config) {}},
		{name: "mysql ok", mutate: func(c *Config) { c.StoreBackend = BackendMySQL }},
		{name: "sqlite ok", mutate: func(c *Config) { c.StoreBackend = BackendSQLite }},
		{name: "redis without addr", mutate: func(c *Config) { c.StoreBackend = BackendRedis }, wantErr: "REDIS_ADDR"},
		{name: "mysql bad port", mutate: func(c *Config) { c.StoreBackend = BackendMySQL; c.MySQLPort = "notaport" }, wantErr: "MYSQL_PORT"},
		{name: "mysql missing host", mutate: func(c *Config) { c.StoreBackend = BackendMySQL; c.MySQLHost = "" }, wantErr: "MySQL"},
		{name: "unknown backend", mutate: func(c *Config) { c.StoreBackend = "etcd" }, wantErr: "STORE_BACKEND"},
		{name: "missing port", mutate: func(c *Config) { c.AppPort = "" }, wantErr: "APP_PORT"},
		{name: "negative retries", mutate: func(c *Config) { c.StoreMaxRetries = -1 }, wantErr: "STORE_MAX_RETRIES"},
		{name: "zero ttl", mutate: func(c *Config) { c.IdempTTLSecs = 0 }, wantErr: "IDEMPOTENCY_TTL_SECONDS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_MySQLDSN(t *testing.T) {
	c := Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "h", MySQLPort: "3306", MySQLDB: "d"}
	want := "u:p@tcp(h:3306)/d?parseTime=true&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}
