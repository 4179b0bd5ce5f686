package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"serverrewards/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Options are the store settings server owners edit by hand.
type Options struct {
	StoreCommand string  `yaml:"store_command"`
	RPCommand    string  `yaml:"rp_command"`
	OwnedSkins   bool    `yaml:"owned_skins_only"`
	HideDlc      bool    `yaml:"hide_unowned_dlc"`
	Logs         bool    `yaml:"log_transactions"`
	NpcOnly      bool    `yaml:"npc_only"`
	ExchangeRate float64 `yaml:"exchange_rate"`
}

// StoreOptions is the YAML options document.
type StoreOptions struct {
	Options    Options               `yaml:"options"`
	Navigation model.StoreNavigation `yaml:"navigation"`
}

// DefaultStoreOptions returns the settings written on first start.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Options: Options{
			StoreCommand: "s",
			RPCommand:    "rp",
			Logs:         true,
			ExchangeRate: 1,
		},
		Navigation: model.DefaultNavigation(),
	}
}

// Rate returns the exchange rate as a decimal.
func (o Options) Rate() decimal.Decimal {
	return decimal.NewFromFloat(o.ExchangeRate)
}

// Validate rejects settings the store cannot run with.
func (s StoreOptions) Validate() error {
	if s.Options.ExchangeRate <= 0 {
		return fmt.Errorf("exchange_rate must be greater than zero, got %v", s.Options.ExchangeRate)
	}
	return nil
}

// LoadStoreOptions reads the YAML options file. A missing file is created
// with defaults; keys absent from an existing file keep their defaults.
func LoadStoreOptions(path string) (StoreOptions, error) {
	opts := DefaultStoreOptions()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := SaveStoreOptions(path, opts); err != nil {
			return opts, err
		}
		log.Printf("[Config] Wrote default options to %s", path)
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("failed to read options: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("invalid options: %w", err)
	}
	return opts, nil
}

// SaveStoreOptions writes opts as YAML, creating the directory if needed.
func SaveStoreOptions(path string, opts StoreOptions) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create options directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write options: %w", err)
	}
	return nil
}
