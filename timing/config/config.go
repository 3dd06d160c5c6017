// Package config holds the machine configuration of the APEX simulator.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/apexsim/emu"
)

// Config holds the machine parameters of a simulated APEX CPU.
type Config struct {
	// Registers is the number of general-purpose registers. Default: 16.
	Registers int `json:"registers"`

	// DataMemorySize is the number of words of data memory. Default: 4096.
	DataMemorySize int `json:"data_memory_size"`

	// BasePC is the address of the first instruction. Default: 4000.
	BasePC int32 `json:"base_pc"`

	// InstructionWidth is the code memory distance between consecutive
	// instructions. Default: 4.
	InstructionWidth int32 `json:"instruction_width"`

	// MaxCycles is the cycle budget used when the caller does not give one.
	// Default: 5000.
	MaxCycles uint64 `json:"max_cycles"`

	// ClockMHz is the simulated clock frequency, used to convert cycles to
	// simulated time. Default: 1000.
	ClockMHz float64 `json:"clock_mhz"`

	// LogLevel is a logrus level name. Default: "warn".
	LogLevel string `json:"log_level"`
}

// DefaultConfig returns the configuration of the reference APEX machine.
func DefaultConfig() *Config {
	return &Config{
		Registers:        emu.DefaultNumRegs,
		DataMemorySize:   emu.DefaultMemorySize,
		BasePC:           emu.DefaultBasePC,
		InstructionWidth: emu.WordSize,
		MaxCycles:        5000,
		ClockMHz:         1000,
		LogLevel:         "warn",
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a usable machine.
func (c *Config) Validate() error {
	if c.Registers <= 0 || c.Registers > 256 {
		return fmt.Errorf("registers must be in 1..256")
	}
	if c.DataMemorySize <= 0 {
		return fmt.Errorf("data_memory_size must be > 0")
	}
	if c.BasePC < 0 {
		return fmt.Errorf("base_pc must be >= 0")
	}
	if c.InstructionWidth <= 0 {
		return fmt.Errorf("instruction_width must be > 0")
	}
	if c.ClockMHz <= 0 {
		return fmt.Errorf("clock_mhz must be > 0")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ClockFrequency returns the simulated clock frequency.
func (c *Config) ClockFrequency() sim.Freq {
	return sim.Freq(c.ClockMHz) * sim.MHz
}

// NewLogger returns a logger at the configured level. An unknown level
// falls back to warn.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	return logger
}
