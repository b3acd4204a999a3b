package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Gateway configuration
	Gateway GatewayConfig

	// Pipeline tuning
	Pipeline PipelineConfig

	// Reference data (loaded from YAML)
	Reference *ReferenceConfig

	// Debug mode
	Debug bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr string
}

// StorageConfig contains persistence configuration
type StorageConfig struct {
	DBPath string
}

// GatewayConfig contains chat gateway configuration
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PipelineConfig contains ingestion pipeline tuning
type PipelineConfig struct {
	DedupTTL          time.Duration
	CacheCapacity     int
	DispatchWorkers   int
	DispatchQueueSize int
	JanitorInterval   time.Duration
	RematchDuplicates bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".trade-bridge", "trades.db")
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	gatewayURL := os.Getenv("GATEWAY_BASE_URL")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:3000"
	}
	gatewayURL = strings.TrimRight(gatewayURL, "/")

	gatewayTimeout := 5 * time.Second
	if val := os.Getenv("GATEWAY_TIMEOUT_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			gatewayTimeout = time.Duration(parsed) * time.Second
		}
	}

	// Dedup window
	dedupTTL := 48 * time.Hour
	if val := os.Getenv("DEDUP_TTL_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			dedupTTL = time.Duration(parsed) * time.Hour
		}
	}

	cacheCapacity := 10000
	if val := os.Getenv("CACHE_CAPACITY"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cacheCapacity = parsed
		}
	}

	dispatchWorkers := 2
	if val := os.Getenv("DISPATCH_WORKERS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			dispatchWorkers = parsed
		}
	}

	dispatchQueue := 256
	if val := os.Getenv("DISPATCH_QUEUE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			dispatchQueue = parsed
		}
	}

	janitorInterval := 10 * time.Minute
	if val := os.Getenv("JANITOR_INTERVAL_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			janitorInterval = time.Duration(parsed) * time.Minute
		}
	}

	// Reference data from YAML (defaults apply when absent)
	reference, err := LoadReferenceConfig(os.Getenv("REFERENCE_CONFIG_PATH"))
	if err != nil {
		reference = DefaultReferenceConfig()
	}

	return &Config{
		Server: ServerConfig{
			Addr: addr,
		},
		Storage: StorageConfig{
			DBPath: dbPath,
		},
		Gateway: GatewayConfig{
			BaseURL: gatewayURL,
			Timeout: gatewayTimeout,
		},
		Pipeline: PipelineConfig{
			DedupTTL:          dedupTTL,
			CacheCapacity:     cacheCapacity,
			DispatchWorkers:   dispatchWorkers,
			DispatchQueueSize: dispatchQueue,
			JanitorInterval:   janitorInterval,
			RematchDuplicates: os.Getenv("REMATCH_DUPLICATES") == "true",
		},
		Reference: reference,
		Debug:     os.Getenv("DEBUG") == "true",
	}
}

// ToRefTable converts the loaded reference data into the parser's lookup
// table.
func (c *Config) ToRefTable() *usecase.RefTable {
	ref := c.Reference
	if ref == nil {
		ref = DefaultReferenceConfig()
	}
	products := make([]usecase.RefProduct, 0, len(ref.Products))
	for _, p := range ref.Products {
		products = append(products, usecase.RefProduct{
			Reference: p.Reference,
			Brand:     p.Brand,
			Family:    p.Family,
		})
	}
	currencies := make(map[string]string, len(ref.Currencies))
	for _, cur := range ref.Currencies {
		currencies[cur.Token] = cur.ISO
	}
	return usecase.NewRefTable(products, currencies)
}
