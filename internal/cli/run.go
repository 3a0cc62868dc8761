package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jacobsa/daemonize"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/scfs/scfs/internal/config"
	"github.com/scfs/scfs/internal/fs"
	"github.com/scfs/scfs/internal/mount"
	"github.com/scfs/scfs/internal/scan"
)

// daemonChildEnv marks a process as the re-executed background child of a
// -d/--daemon invocation, the same way gcsfuse's cmd/legacy_main.go sets
// logger.GCSFuseInBackgroundMode before calling daemonize.Run.
const daemonChildEnv = "SCFS_DAEMON_CHILD"

// Main is the body shared by cmd/scfs, cmd/splitfs and cmd/catfs: validate,
// optionally re-exec in the background, scan the mirror, build the right
// file system, and run the mount loop to completion. subcommand is "split"
// or "cat" for the scfs multi-mode binary, or "" for splitfs/catfs, which
// hard-wire their mode and take no subcommand on the re-exec command line.
func Main(subcommand string, args Args, out, errOut io.Writer) int {
	if err := args.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if args.Daemonize && os.Getenv(daemonChildEnv) == "" {
		if err := runDaemonized(subcommand, args, out); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		return 0
	}

	errorLogger := log.New(errOut, "scfs: ", log.LstdFlags)

	fsys, quitter, err := build(args, errorLogger)
	if err != nil {
		fmt.Fprintln(errOut, err)
		signalDaemonOutcome(err)
		return 1
	}

	mcfg := mount.Config{
		Options:     args.Options,
		ErrorLogger: errorLogger,
		OnReady:     func() { signalDaemonOutcome(nil) },
	}

	if err := mount.Run(fsys, quitter, args.MountPoint, mcfg); err != nil {
		fmt.Fprintln(errOut, err)
		signalDaemonOutcome(err)
		return 1
	}

	return 0
}

// build scans the mirror in the mode args selects and constructs the
// matching file system. The returned value satisfies both
// fuseutil.FileSystem and mount.Quitter, since fs.SplitFileSystem and
// fs.CatFileSystem both embed the core that implements the latter.
func build(args Args, logger *log.Logger) (fuseutil.FileSystem, mount.Quitter, error) {
	switch args.Mode {
	case ModeSplit:
		blockSize := config.DefaultBlockSize
		if args.BlockSize != "" {
			parsed, err := ParseBlockSize(args.BlockSize)
			if err != nil {
				return nil, nil, err
			}
			blockSize = parsed
		}

		cfg := config.Config{BlockSize: blockSize}
		idx, err := scan.Split(args.Mirror, cfg.BlockSize)
		if err != nil {
			return nil, nil, err
		}
		fsys, err := fs.NewSplit(idx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return fsys, fsys, nil

	case ModeCat:
		idx, cfg, err := scan.Cat(args.Mirror)
		if err != nil {
			return nil, nil, err
		}
		fsys := fs.NewCat(idx, cfg, logger)
		return fsys, fsys, nil

	default:
		return nil, nil, fmt.Errorf("cli: unknown mode %v", args.Mode)
	}
}

// runDaemonized re-execs the current binary in the background via
// jacobsa/daemonize, the same mechanism gcsfuse's cmd/legacy_main.go uses,
// and blocks until the child signals its mount outcome.
func runDaemonized(subcommand string, args Args, out io.Writer) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cli: resolving executable: %w", err)
	}

	env := append(os.Environ(), daemonChildEnv+"=1")

	if err := daemonize.Run(execPath, reconstructArgv(subcommand, args), env, out); err != nil {
		return fmt.Errorf("cli: daemonize.Run: %w", err)
	}
	return nil
}

// reconstructArgv rebuilds a command line for the daemonized child out of
// the already-validated Args, using the resolved absolute mirror and
// mountpoint paths so the child is immune to a daemon-induced working
// directory change.
func reconstructArgv(subcommand string, args Args) []string {
	var argv []string
	if subcommand != "" {
		argv = append(argv, subcommand)
	}
	if args.BlockSize != "" {
		argv = append(argv, "-b", args.BlockSize)
	}
	for _, o := range args.Options {
		argv = append(argv, "-o", o)
	}
	argv = append(argv, args.Mirror, args.MountPoint)
	return argv
}

// signalDaemonOutcome reports err (nil for success) back to the parent
// process waiting inside daemonize.Run, if this process is in fact such a
// child. It is always safe to call from a non-daemonized process: the env
// var check makes it a no-op there.
func signalDaemonOutcome(err error) {
	if os.Getenv(daemonChildEnv) == "" {
		return
	}
	if sigErr := daemonize.SignalOutcome(err); sigErr != nil {
		log.Printf("cli: signaling daemon outcome: %v", sigErr)
	}
}
