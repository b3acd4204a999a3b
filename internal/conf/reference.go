package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ReferenceConfig is the static reference data loaded from YAML: the
// product reference table used by the extraction parser plus the lexicons
// driving noise filtering and request classification.
type ReferenceConfig struct {
	Products    []ProductEntry `yaml:"products"`
	NoiseLines  []string       `yaml:"noise_signatures"`
	RequestCues []string       `yaml:"request_cues"`
	Currencies  []CurrencyRule `yaml:"currencies"`
}

// ProductEntry maps a reference code to its brand and family.
type ProductEntry struct {
	Reference string `yaml:"reference"`
	Brand     string `yaml:"brand"`
	Family    string `yaml:"family"`
}

// CurrencyRule maps a written currency token to its ISO code.
type CurrencyRule struct {
	Token string `yaml:"token"`
	ISO   string `yaml:"iso"`
}

// LoadReferenceConfig loads reference data from YAML, trying the explicit
// path first and falling back to conventional locations. Built-in defaults
// apply when no file is found, so the service runs without any config.
func LoadReferenceConfig(configPath string) (*ReferenceConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/reference.yaml",
			"./configs/reference.yaml",
			"/etc/trade-bridge/reference.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "reference.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if b, err := os.ReadFile(p); err == nil {
			data, loadedPath = b, p
			break
		}
	}

	cfg := DefaultReferenceConfig()
	if data == nil {
		fmt.Println("[Config] No reference.yaml found, using defaults")
		return cfg, nil
	}

	var loaded ReferenceConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse %s: %w", loadedPath, err)
	}
	fmt.Printf("[Config] Loading reference data from: %s\n", loadedPath)

	// File entries extend the defaults rather than replacing them, so a
	// tenant-specific table only needs the additions.
	cfg.Products = append(cfg.Products, loaded.Products...)
	cfg.NoiseLines = append(cfg.NoiseLines, loaded.NoiseLines...)
	cfg.RequestCues = append(cfg.RequestCues, loaded.RequestCues...)
	cfg.Currencies = append(cfg.Currencies, loaded.Currencies...)
	return cfg, nil
}

// DefaultReferenceConfig returns the built-in reference data.
func DefaultReferenceConfig() *ReferenceConfig {
	return &ReferenceConfig{
		Products: []ProductEntry{
			{Reference: "126234", Brand: "Rolex", Family: "Datejust 41"},
			{Reference: "126334", Brand: "Rolex", Family: "Datejust 41"},
			{Reference: "126610LN", Brand: "Rolex", Family: "Submariner"},
			{Reference: "126710BLRO", Brand: "Rolex", Family: "GMT-Master II"},
			{Reference: "124060", Brand: "Rolex", Family: "Submariner"},
			{Reference: "228238", Brand: "Rolex", Family: "Day-Date 40"},
			{Reference: "5711A", Brand: "Patek Philippe", Family: "Nautilus"},
			{Reference: "5712R", Brand: "Patek Philippe", Family: "Nautilus"},
			{Reference: "5167A", Brand: "Patek Philippe", Family: "Aquanaut"},
			{Reference: "15202ST", Brand: "Audemars Piguet", Family: "Royal Oak"},
			{Reference: "15500ST", Brand: "Audemars Piguet", Family: "Royal Oak"},
			{Reference: "26331ST", Brand: "Audemars Piguet", Family: "Royal Oak Chronograph"},
			{Reference: "311.30.42.30.01.005", Brand: "Omega", Family: "Speedmaster"},
			{Reference: "H0064", Brand: "Richard Mille", Family: "RM 011"},
		},
		NoiseLines: []string{
			"joined using this group's invite link",
			"created this group",
			"changed the subject",
			"changed this group's icon",
			"this message was deleted",
			"missed voice call",
			"missed video call",
			"security code changed",
			"added you to a group",
		},
		RequestCues: []string{
			"looking for",
			"need",
			"want to buy",
			"wtb",
			"iso",
			"in search of",
			"anyone has",
			"anyone have",
			"searching for",
			"buying",
		},
		Currencies: []CurrencyRule{
			{Token: "$", ISO: "USD"},
			{Token: "usd", ISO: "USD"},
			{Token: "us$", ISO: "USD"},
			{Token: "€", ISO: "EUR"},
			{Token: "eur", ISO: "EUR"},
			{Token: "£", ISO: "GBP"},
			{Token: "gbp", ISO: "GBP"},
			{Token: "¥", ISO: "JPY"},
			{Token: "jpy", ISO: "JPY"},
			{Token: "hk$", ISO: "HKD"},
			{Token: "hkd", ISO: "HKD"},
			{Token: "sgd", ISO: "SGD"},
			{Token: "aed", ISO: "AED"},
			{Token: "chf", ISO: "CHF"},
			{Token: "rmb", ISO: "CNY"},
			{Token: "cny", ISO: "CNY"},
		},
	}
}
