package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/bpowers/lru/simplelru"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// cacheConfig is the file-backed configuration of the cache under test.
type cacheConfig struct {
	Size      int
	LogMisses bool `toml:",omitempty"`
}

var defaultConfig = cacheConfig{
	Size: simplelru.DefaultSize,
}

func loadConfig(file string, cfg *cacheConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the defaults, then the config file, then applies flags.
func makeConfig(ctx *cli.Context) (cacheConfig, error) {
	cfg := defaultConfig
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(sizeFlag.Name) {
		cfg.Size = ctx.Int(sizeFlag.Name)
	}
	if ctx.IsSet(logMissesFlag.Name) {
		cfg.LogMisses = ctx.Bool(logMissesFlag.Name)
	}
	if cfg.Size < 1 {
		return cfg, fmt.Errorf("invalid cache size %d: %w", cfg.Size, simplelru.ErrInvalidSize)
	}
	return cfg, nil
}
