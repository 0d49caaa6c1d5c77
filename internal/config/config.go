package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/depotcb/cbagent/internal/impact"
	"github.com/depotcb/cbagent/internal/planner"
)

// Config holds everything the binary needs to wire stores and services.
type Config struct {
	DBPath       string
	StoreDriver  planner.Dialect
	StoreDSN     string
	StoreTimeout time.Duration

	DefaultDepot        string
	DefaultLookbackDays int
	DefaultTopN         int
	AddItemLimit        int
	MinOrderFrequency   int
	CaptureRate         float64

	Tables planner.Tables

	CacheSize int
	CacheTTL  time.Duration

	LogLevel        string
	LogFormat       string
	MetricsTextfile string
}

// DefaultConfig returns a Config pointing at the local sqlite store.
func DefaultConfig() Config {
	return Config{
		DBPath:       defaultDBPath(),
		StoreDriver:  planner.DialectSQLite,
		StoreTimeout: 300 * time.Second,

		DefaultDepot:        "7634",
		DefaultLookbackDays: planner.DefaultLookbackDays,
		DefaultTopN:         10,
		AddItemLimit:        700,
		MinOrderFrequency:   planner.DefaultMinOrderFrequency,
		CaptureRate:         impact.DefaultConfig().CaptureRate,

		Tables: planner.DefaultTables(),

		CacheSize: 256,
		CacheTTL:  300 * time.Second,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cbagent", "cbagent.db")
	}
	return filepath.Join(home, ".cbagent", "cbagent.db")
}

// LoadConfig reads configuration from environment variables,
// falling back to defaults for any unset or invalid values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CBAGENT_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CBAGENT_STORE_DRIVER"); v != "" {
		switch d := planner.Dialect(v); d {
		case planner.DialectSQLite, planner.DialectMySQL, planner.DialectPostgres:
			cfg.StoreDriver = d
		}
	}
	if v := os.Getenv("CBAGENT_STORE_DSN"); v != "" {
		cfg.StoreDSN = v
	}
	if n, ok := positiveInt("CBAGENT_STORE_TIMEOUT_MS"); ok {
		cfg.StoreTimeout = time.Duration(n) * time.Millisecond
	}

	if v := os.Getenv("CBAGENT_DEFAULT_DEPOT"); v != "" {
		cfg.DefaultDepot = v
	}
	if n, ok := positiveInt("CBAGENT_DEFAULT_LOOKBACK_DAYS"); ok {
		cfg.DefaultLookbackDays = n
	}
	if n, ok := positiveInt("CBAGENT_DEFAULT_TOP_N"); ok {
		cfg.DefaultTopN = n
	}
	if n, ok := positiveInt("CBAGENT_ADD_ITEM_LIMIT"); ok {
		cfg.AddItemLimit = n
	}
	if n, ok := positiveInt("CBAGENT_MIN_ORDER_FREQUENCY"); ok {
		cfg.MinOrderFrequency = n
	}
	if v := os.Getenv("CBAGENT_CAPTURE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.CaptureRate = f
		}
	}

	if v := os.Getenv("CBAGENT_METRICS_TABLE"); v != "" {
		cfg.Tables.Metrics = v
	}
	if v := os.Getenv("CBAGENT_ORDERS_TABLE"); v != "" {
		cfg.Tables.Orders = v
	}
	if v := os.Getenv("CBAGENT_ASSORTMENT_TABLE"); v != "" {
		cfg.Tables.Assortment = v
	}

	if v := os.Getenv("CBAGENT_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheSize = n
		}
	}
	if n, ok := positiveInt("CBAGENT_CACHE_TTL_SEC"); ok {
		cfg.CacheTTL = time.Duration(n) * time.Second
	}

	if v := os.Getenv("CBAGENT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CBAGENT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("CBAGENT_METRICS_TEXTFILE"); v != "" {
		cfg.MetricsTextfile = v
	}

	return cfg
}

// DSN returns the connection string for the configured driver. The sqlite
// driver uses the local database path unless a DSN is set explicitly.
func (c Config) DSN() string {
	if c.StoreDriver == planner.DialectSQLite && c.StoreDSN == "" {
		return c.DBPath
	}
	return c.StoreDSN
}

// CacheEnabled reports whether snapshot loads are memoized.
func (c Config) CacheEnabled() bool {
	return c.CacheSize > 0
}

// ImpactConfig returns simulator settings with the configured capture rate.
func (c Config) ImpactConfig() impact.Config {
	ic := impact.DefaultConfig()
	ic.CaptureRate = c.CaptureRate
	return ic
}

func positiveInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
