package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"DB_PATH", "HTTP_ADDR", "GATEWAY_BASE_URL", "GATEWAY_TIMEOUT_SECONDS",
		"DEDUP_TTL_HOURS", "CACHE_CAPACITY", "DISPATCH_WORKERS",
		"DISPATCH_QUEUE_SIZE", "JANITOR_INTERVAL_MINUTES",
		"REMATCH_DUPLICATES", "REFERENCE_CONFIG_PATH", "DEBUG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadFromEnv()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Gateway.BaseURL != "http://localhost:3000" {
		t.Errorf("Unexpected gateway URL %s", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.Timeout != 5*time.Second {
		t.Errorf("Unexpected gateway timeout %v", cfg.Gateway.Timeout)
	}
	if cfg.Pipeline.DedupTTL != 48*time.Hour {
		t.Errorf("Unexpected dedup TTL %v", cfg.Pipeline.DedupTTL)
	}
	if cfg.Pipeline.DispatchWorkers != 2 || cfg.Pipeline.DispatchQueueSize != 256 {
		t.Errorf("Unexpected dispatch defaults %d/%d", cfg.Pipeline.DispatchWorkers, cfg.Pipeline.DispatchQueueSize)
	}
	if cfg.Pipeline.RematchDuplicates {
		t.Error("Expected duplicate rematching off by default")
	}
	if cfg.Debug {
		t.Error("Expected debug off by default")
	}
	if cfg.Reference == nil || len(cfg.Reference.Products) == 0 {
		t.Error("Expected built-in reference data")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("GATEWAY_BASE_URL", "https://gw.example.com/")
	t.Setenv("GATEWAY_TIMEOUT_SECONDS", "30")
	t.Setenv("DEDUP_TTL_HOURS", "12")
	t.Setenv("REMATCH_DUPLICATES", "true")
	t.Setenv("DEBUG", "true")

	cfg := LoadFromEnv()

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Gateway.BaseURL != "https://gw.example.com" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.Timeout != 30*time.Second {
		t.Errorf("Unexpected timeout %v", cfg.Gateway.Timeout)
	}
	if cfg.Pipeline.DedupTTL != 12*time.Hour {
		t.Errorf("Unexpected dedup TTL %v", cfg.Pipeline.DedupTTL)
	}
	if !cfg.Pipeline.RematchDuplicates || !cfg.Debug {
		t.Error("Expected boolean flags on")
	}
}

func TestLoadReferenceConfig_ExtendsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	content := `products:
  - reference: "116500LN"
    brand: "Rolex"
    family: "Daytona"
request_cues:
  - "hunting for"
currencies:
  - token: "myr"
    iso: "MYR"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadReferenceConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	defaults := DefaultReferenceConfig()
	if len(cfg.Products) != len(defaults.Products)+1 {
		t.Errorf("Expected file products appended to defaults, got %d", len(cfg.Products))
	}
	found := false
	for _, p := range cfg.Products {
		if p.Reference == "116500LN" && p.Family == "Daytona" {
			found = true
		}
	}
	if !found {
		t.Error("Expected file-supplied product to be loaded")
	}
	if len(cfg.Currencies) != len(defaults.Currencies)+1 {
		t.Errorf("Expected file currency appended, got %d", len(cfg.Currencies))
	}
}

func TestLoadReferenceConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.yaml")
	if err := os.WriteFile(path, []byte("products: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadReferenceConfig(path); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}

func TestToRefTable(t *testing.T) {
	cfg := &Config{Reference: &ReferenceConfig{
		Products:   []ProductEntry{{Reference: "126234", Brand: "Rolex", Family: "Datejust 41"}},
		Currencies: []CurrencyRule{{Token: "$", ISO: "USD"}},
	}}

	table := cfg.ToRefTable()
	if table == nil {
		t.Fatal("Expected a table")
	}
	product, ok := table.Lookup("126234")
	if !ok || product.Brand != "Rolex" {
		t.Errorf("Expected table lookup to find Rolex 126234, got %+v ok=%v", product, ok)
	}

	// Nil reference data falls back to the built-in table.
	fallback := (&Config{}).ToRefTable()
	if _, ok := fallback.Lookup("126610LN"); !ok {
		t.Error("Expected default table to know 126610LN")
	}
}
