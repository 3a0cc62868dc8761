// Package cli implements the argument parsing and validation shared by
// cmd/scfs, cmd/splitfs and cmd/catfs: mirror/mountpoint resolution,
// repeated -o options plus a trailing `--` block, --mkdir, -d/--daemon, and
// (split only) -b/--blocksize. It sticks to the standard flag package, the
// same minimal style samples/mount_roloopbackfs/mount.go uses, rather than
// adopting a subcommand framework for a CLI surface this small.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

// Mode selects which file system a binary mounts.
type Mode int

const (
	ModeSplit Mode = iota
	ModeCat
)

// Args is the parsed, validated result of a command line.
type Args struct {
	Mode       Mode
	Mirror     string
	MountPoint string
	Options    []string
	Daemonize  bool
	Mkdir      bool
	BlockSize  string // raw, unparsed; only meaningful for ModeSplit
}

// Parse parses argv (excluding the program name) for a binary whose mode is
// fixed ahead of time (splitfs or catfs). fixedMode selects which flags are
// registered: -b/--blocksize only makes sense for ModeSplit.
func Parse(fs *flag.FlagSet, argv []string, fixedMode Mode) (Args, error) {
	var opts stringList
	fs.Var(&opts, "o", "Additional FUSE mount option (repeatable).")
	daemonize := fs.Bool("d", false, "Daemonize after mounting.")
	fs.BoolVar(daemonize, "daemon", false, "Daemonize after mounting.")
	mkdir := fs.Bool("mkdir", false, "Create the mountpoint if it doesn't exist.")

	var blockSize *string
	if fixedMode == ModeSplit {
		blockSize = fs.String("b", "2097152", "Block size chunks are split into.")
		fs.StringVar(blockSize, "blocksize", "2097152", "Block size chunks are split into.")
	}

	if err := fs.Parse(argv); err != nil {
		return Args{}, err
	}

	// Everything after a literal "--" in the remaining args is more FUSE
	// options, not positional arguments.
	positional := fs.Args()
	var trailing []string
	for i, a := range positional {
		if a == "--" {
			trailing = positional[i+1:]
			positional = positional[:i]
			break
		}
	}
	opts = append(opts, trailing...)

	if len(positional) != 2 {
		return Args{}, fmt.Errorf("cli: expected <mirror> <mountpoint>, got %d positional argument(s)", len(positional))
	}

	args := Args{
		Mode:       fixedMode,
		Mirror:     positional[0],
		MountPoint: positional[1],
		Options:    []string(opts),
		Daemonize:  *daemonize,
		Mkdir:      *mkdir,
	}
	if blockSize != nil {
		args.BlockSize = *blockSize
	}

	return args, nil
}

// Validate resolves Mirror and MountPoint to absolute, existing paths
// (creating MountPoint first if Mkdir is set), and rejects a mirror that is
// itself inside the mountpoint — mounting would otherwise make the source
// directory recursively contain itself.
func (a *Args) Validate() error {
	if a.Mkdir {
		if err := os.MkdirAll(a.MountPoint, 0777); err != nil {
			return fmt.Errorf("cli: creating mountpoint %s: %w", a.MountPoint, err)
		}
	}

	mirror, err := filepath.Abs(a.Mirror)
	if err != nil {
		return fmt.Errorf("cli: resolving mirror path: %w", err)
	}
	if _, err := os.Stat(mirror); err != nil {
		return fmt.Errorf("cli: mirror %s: %w", mirror, err)
	}

	mountpoint, err := filepath.Abs(a.MountPoint)
	if err != nil {
		return fmt.Errorf("cli: resolving mountpoint path: %w", err)
	}
	if _, err := os.Stat(mountpoint); err != nil {
		return fmt.Errorf("cli: mountpoint %s: %w", mountpoint, err)
	}

	rel, err := filepath.Rel(mountpoint, mirror)
	if err == nil && rel != ".." && !hasDotDotPrefix(rel) {
		return fmt.Errorf("cli: mirror %s must not be inside mountpoint %s", mirror, mountpoint)
	}

	a.Mirror = mirror
	a.MountPoint = mountpoint
	return nil
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.'
}

// stringList implements flag.Value, accumulating every -o occurrence.
type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
