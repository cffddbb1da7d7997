package vm

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig is the on-disk TOML shape for Config: a small typed struct,
// loaded once at startup, with zero values standing in for "use the
// built-in default".
type FileConfig struct {
	Stack struct {
		InitialRegisters int `toml:"initial_registers"`
		InitialFrames    int `toml:"initial_frames"`
		MaxFrames        int `toml:"max_frames"`
	} `toml:"stack"`
}

// LoadConfig reads a TOML file at path and merges it over DefaultConfig;
// any field left at zero in the file keeps the default.
func LoadConfig(path string) (Config, error) {
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Config{}, fmt.Errorf("vm: loading config %s: %w", path, err)
	}

	cfg := DefaultConfig
	if fc.Stack.InitialRegisters != 0 {
		cfg.InitialRegs = fc.Stack.InitialRegisters
	}
	if fc.Stack.InitialFrames != 0 {
		cfg.InitialFrames = fc.Stack.InitialFrames
	}
	if fc.Stack.MaxFrames != 0 {
		cfg.MaxFrames = fc.Stack.MaxFrames
	}
	return cfg, nil
}

// MustLoadConfig is LoadConfig for callers that would just exit on a bad
// config file anyway.
func MustLoadConfig(path string) Config {
	cfg, err := LoadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
