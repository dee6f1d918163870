// Package config loads run configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything a run needs to start.
type Config struct {
	Seed    int64  `yaml:"seed"`
	Days    int    `yaml:"days"` // 0 = run paced until interrupted
	DBPath  string `yaml:"db_path"`
	APIPort int    `yaml:"api_port"` // 0 = API disabled

	TaxRate         int                `yaml:"tax_rate"`
	SectorSubsidies map[string]float64 `yaml:"sector_subsidies"`

	BaseInterestRate float64 `yaml:"base_interest_rate"`
	LoanFloor        int64   `yaml:"loan_floor"`
	LoanAmount       int64   `yaml:"loan_amount"`

	FoodProduct string `yaml:"food_product"`
}

// Default returns the standard run configuration.
func Default() Config {
	return Config{
		Seed:    42,
		Days:    30,
		DBPath:  "data/coinage.db",
		APIPort: 0,
		TaxRate: 10,
		SectorSubsidies: map[string]float64{
			"agriculture": 100,
		},
		BaseInterestRate: 0.05,
		LoanFloor:        500,
		LoanAmount:       1000,
		FoodProduct:      "wheat",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
