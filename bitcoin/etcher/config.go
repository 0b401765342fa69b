// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package etcher

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"gopkg.in/yaml.v3"

	"runeetch/bitcoin"
)

// Config defines commit-reveal orchestration parameters.
type Config struct {
	Network           bitcoin.Network `yaml:"network"`
	CollectionAddress string          `yaml:"collectionAddress"` // service fee destination.
	MinServiceFee     int64           `yaml:"minServiceFee"`     // in satoshi.
	MaxServiceFee     int64           `yaml:"maxServiceFee"`     // in satoshi.
	DustThreshold     int64           `yaml:"dustThreshold"`     // in satoshi.
	CallTimeout       time.Duration   `yaml:"callTimeout"`       // bound for each external call.
}

// DefaultConfig returns Config with protocol defaults applied.
func DefaultConfig() Config {
	return Config{
		Network:       bitcoin.NetworkMain,
		MinServiceFee: 1000,
		MaxServiceFee: 100_000,
		DustThreshold: 546,
		CallTimeout:   15 * time.Second,
	}
}

// LoadConfig reads yaml configuration from path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}

	return config, config.Validate()
}

// Validate checks the config against the selected network.
func (config Config) Validate() error {
	params, err := config.Network.Params()
	if err != nil {
		return err
	}

	if config.CollectionAddress == "" {
		return errors.New("collection address is required")
	}
	if _, err = btcutil.DecodeAddress(config.CollectionAddress, params); err != nil {
		return fmt.Errorf("collection address: %w", err)
	}

	switch {
	case config.MinServiceFee < 0 || config.MaxServiceFee < config.MinServiceFee:
		return errors.New("invalid service fee bounds")
	case config.DustThreshold <= 0:
		return errors.New("dust threshold must be positive")
	case config.CallTimeout <= 0:
		return errors.New("call timeout must be positive")
	}

	return nil
}
