// Package mount provides the glue between a fuseutil.FileSystem and the
// jacobsa/fuse transport: building a fuse.MountConfig from the CLI's -o
// options, mounting, and running a loop that waits for either an OS
// interrupt or the file system's own drop hook before unmounting and
// returning, matching samples/mount_roloopbackfs/mount.go's shape.
package mount

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
)

// Quitter is implemented by both fs.SplitFileSystem and fs.CatFileSystem:
// it exposes the channel that closes once the file system's drop hook has
// fired, so Run can treat a Drop call the same as a local Ctrl-C.
type Quitter interface {
	Quit() <-chan struct{}
	Drop()
}

// Config collects the mount-time options the CLI parses out of -o flags
// and the trailing `--` block.
type Config struct {
	Options     []string // raw "key" or "key=value" strings, in the order given
	Debug       bool
	ErrorLogger *log.Logger
	DebugLogger *log.Logger

	// OnReady, if set, is called once after the mount is ready to serve but
	// before Run blocks waiting for it to be torn down. The -d/--daemon code
	// path uses this to signal the waiting parent process that the mount
	// succeeded, the same moment gcsfuse's daemonize.SignalOutcome fires.
	OnReady func()
}

// buildFuseConfig turns Config into a fuse.MountConfig with the defaults
// every SCFS mount always carries: read-only, and fsname=scfs.
func buildFuseConfig(c Config) *fuse.MountConfig {
	options := map[string]string{
		"fsname": "scfs",
	}
	for _, o := range c.Options {
		key, value, _ := strings.Cut(o, "=")
		options[key] = value
	}

	cfg := &fuse.MountConfig{
		ReadOnly:    true,
		Options:     options,
		ErrorLogger: c.ErrorLogger,
	}
	if c.Debug {
		cfg.DebugLogger = c.DebugLogger
	}
	return cfg
}

// Run mounts fsys at mountpoint and blocks until it is unmounted, by
// whichever of three causes comes first: an OS interrupt (Ctrl-C), an
// external `fusermount -u` / `umount` invoked by another process, or the
// caller's own quitter firing. Whichever happens, quitter's drop hook
// fires exactly once before Run returns, the same guarantee
// original_source/src/cli.rs gets from pairing a ctrlc handler with a
// Drop impl over one mpsc channel.
func Run(fsys fuseutil.FileSystem, quitter Quitter, mountpoint string, cfg Config) error {
	mfs, err := fuse.Mount(mountpoint, fsys, buildFuseConfig(cfg))
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer quitter.Drop()

	if err := mfs.WaitForReady(context.Background()); err != nil {
		return fmt.Errorf("mount: waiting for ready: %w", err)
	}
	if cfg.OnReady != nil {
		cfg.OnReady()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	joined := make(chan error, 1)
	go func() { joined <- mfs.Join(context.Background()) }()

	select {
	case <-sig:
	case <-quitter.Quit():
	case err := <-joined:
		// Already unmounted from outside the process; nothing left to do.
		if err != nil {
			return fmt.Errorf("mount: join: %w", err)
		}
		return nil
	}

	if err := mfs.Unmount(); err != nil {
		return fmt.Errorf("mount: unmount: %w", err)
	}
	if err := <-joined; err != nil {
		return fmt.Errorf("mount: join: %w", err)
	}
	return nil
}
