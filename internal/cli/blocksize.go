package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBlockSize converts a symbolic quantity like "2097152", "512K", "4M",
// "1G" or "1T" into a byte count. Suffixes are powers of 1024, matching
// original_source/src/cli.rs's convert_symbolic_quantity.
func ParseBlockSize(s string) (uint64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("cli: empty blocksize")
	}

	suffix := trimmed[len(trimmed)-1]
	multiplier := uint64(1)
	numeric := trimmed

	switch suffix {
	case 'K', 'k':
		multiplier = 1 << 10
	case 'M', 'm':
		multiplier = 1 << 20
	case 'G', 'g':
		multiplier = 1 << 30
	case 'T', 't':
		multiplier = 1 << 40
	}
	if multiplier != 1 {
		numeric = trimmed[:len(trimmed)-1]
	}

	numeric = strings.TrimSpace(numeric)
	if numeric == "" {
		return 0, fmt.Errorf("cli: blocksize %q has no digits", s)
	}

	value, err := strconv.ParseUint(numeric, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cli: invalid blocksize %q: %w", s, err)
	}
	if value == 0 {
		return 0, fmt.Errorf("cli: blocksize must be greater than zero")
	}

	return value * multiplier, nil
}
