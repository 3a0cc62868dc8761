// Package config reads and writes the .scfs_config file that SplitFS writes
// at the root of its mount and CatFS reads back in order to reconstruct the
// block size a mirror was split with.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name of the configuration file, hidden under the root of
// every SplitFS mount and expected at the root of every CatFS mirror.
const FileName = ".scfs_config"

// DefaultBlockSize is used by SplitFS when no -b/--blocksize flag is given.
const DefaultBlockSize uint64 = 2097152

// Config is the (de)serialized form of .scfs_config.
type Config struct {
	BlockSize uint64 `json:"blocksize"`
}

// Default returns a Config with DefaultBlockSize.
func Default() Config {
	return Config{BlockSize: DefaultBlockSize}
}

// Marshal renders c as the bytes that should be written to .scfs_config.
func (c Config) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Load reads and parses the configuration file at the root of mirrorDir.
// The error text is part of the external contract: callers that want the
// exact historical wording should check with errors.Is against
// ErrNotFound / ErrInvalid.
func Load(mirrorDir string) (Config, error) {
	path := filepath.Join(mirrorDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalid, path)
	}
	if c.BlockSize == 0 {
		// A missing "blocksize" key unmarshals to the zero value without an
		// error from encoding/json, but a mirror with no block size is just as
		// unusable as one with malformed JSON: read.Cat divides by it.
		return Config{}, fmt.Errorf("%w: %s", ErrInvalid, path)
	}

	return c, nil
}

// ErrNotFound and ErrInvalid are the two config-loading failure modes CatFS
// must distinguish: "SCFS config file not found" and "SCFS config file
// contains invalid JSON", matching the historical wording exactly.
var (
	ErrNotFound = fmt.Errorf("SCFS config file not found")
	ErrInvalid  = fmt.Errorf("SCFS config file contains invalid JSON")
)
