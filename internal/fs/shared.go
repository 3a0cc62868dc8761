package fs

import (
	"context"
	"log"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/timeutil"

	"github.com/scfs/scfs/internal/attr"
	"github.com/scfs/scfs/internal/handle"
	"github.com/scfs/scfs/internal/index"
)

// core holds everything SplitFileSystem and CatFileSystem share: the
// populated index, the attribute resolver built over it, the directory
// handle table (directory handles carry no per-open state, so a struct{}
// table is enough), a clock for attribute TTLs, a logger, and the
// drop-hook/quitter plumbing that lets the mount loop learn when this file
// system has been torn down. This mirrors shared.rs's Shared trait:
// lookup/getattr/readlink are implemented once here and reused by both
// modes, which each only override the mode-specific hooks (attribute
// computation already lives entirely in internal/attr, so in Go terms the
// "override" is simply not needed for those three operations at all).
type core struct {
	idx        *index.Index
	resolver   *attr.Resolver
	clock      timeutil.Clock
	dirHandles *handle.Table[struct{}]
	logger     *log.Logger
	quit       chan struct{}
}

func newCore(idx *index.Index, logger *log.Logger) core {
	return core{
		idx:        idx,
		resolver:   attr.NewResolver(idx),
		clock:      timeutil.RealClock(),
		dirHandles: handle.NewTable[struct{}](),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// Quit returns the channel that is closed once this file system's drop
// hook fires, i.e. once Drop has been called. mount.Run selects on it
// alongside an interrupt signal and the mount's own completion, so a Drop
// call ends the mount just as Ctrl-C does.
func (c *core) Quit() <-chan struct{} {
	return c.quit
}

// Drop fires the drop hook. It is idempotent: the mount loop calls it after
// MountedFileSystem.Join returns, but an operation handler that discovers
// the mirror has gone missing out from under it may also call it directly.
func (c *core) Drop() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
}

func (c *core) entryAttrs(row *index.Row) (fuseops.ChildInodeEntry, error) {
	info, err := c.resolver.Resolve(row)
	if err != nil {
		return fuseops.ChildInodeEntry{}, err
	}
	return fuseops.ChildInodeEntry{
		Child:                row.Ino,
		Attributes:           info.ToFuseAttrs(),
		AttributesExpiration: attr.Expiration(c.clock),
		EntryExpiration:      attr.Expiration(c.clock),
	}, nil
}

// lookUpInode implements fuseutil.FileSystem.LookUpInode generically: find
// the row named op.Name under op.Parent, resolve its attributes, done. Both
// SplitFileSystem and CatFileSystem call this for every lookup except the
// SplitFS root's ".scfs_config" special case, which is handled before
// falling back to this.
func (c *core) lookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	row, ok := c.idx.LookupChild(op.Parent, op.Name)
	if !ok {
		return fuse.ENOENT
	}

	entry, err := c.entryAttrs(row)
	if err != nil {
		c.logger.Printf("LookUpInode(%d, %q): %v", op.Parent, op.Name, err)
		return fuse.EIO
	}
	op.Entry = entry
	return nil
}

func (c *core) getInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	row, ok := c.idx.Lookup(op.Inode)
	if !ok {
		return fuse.ENOENT
	}

	info, err := c.resolver.Resolve(row)
	if err != nil {
		c.logger.Printf("GetInodeAttributes(%d): %v", op.Inode, err)
		return fuse.EIO
	}
	op.Attributes = info.ToFuseAttrs()
	op.AttributesExpiration = attr.Expiration(c.clock)
	return nil
}

func (c *core) readSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	row, ok := c.idx.Lookup(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	if row.Symlink == "" {
		return fuse.EIO
	}
	op.Target = row.Symlink
	return nil
}

func (c *core) openDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	if _, ok := c.idx.Lookup(op.Inode); !ok {
		return fuse.ENOENT
	}
	op.Handle = c.dirHandles.Open(struct{}{})
	return nil
}

func (c *core) releaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	c.dirHandles.Release(op.Handle)
	return nil
}

func (c *core) forgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return nil
}

func (c *core) statFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return nil
}
