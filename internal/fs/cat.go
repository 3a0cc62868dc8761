package fs

import (
	"context"
	"log"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/scfs/scfs/internal/config"
	"github.com/scfs/scfs/internal/handle"
	"github.com/scfs/scfs/internal/index"
	"github.com/scfs/scfs/internal/read"
)

// CatFileSystem is the inverse of SplitFileSystem: every virtual directory
// of chunks in the mirror is presented as a single concatenated regular
// file, and the mirror's own .scfs_config is invisible (it was consumed at
// scan time to recover the block size, see internal/scan.Cat).
type CatFileSystem struct {
	fuseutil.NotImplementedFileSystem
	core

	cfg         config.Config
	fileHandles *handle.Table[handle.CatEntry]
}

var _ fuseutil.FileSystem = (*CatFileSystem)(nil)

// NewCat builds a CatFileSystem over an already-populated index and the
// configuration recovered from the mirror's .scfs_config.
func NewCat(idx *index.Index, cfg config.Config, logger *log.Logger) *CatFileSystem {
	return &CatFileSystem{
		core:        newCore(idx, logger),
		cfg:         cfg,
		fileHandles: handle.NewTable[handle.CatEntry](),
	}
}

func (fs *CatFileSystem) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	return fs.core.lookUpInode(ctx, op)
}

func (fs *CatFileSystem) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	return fs.core.getInodeAttributes(ctx, op)
}

func (fs *CatFileSystem) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	return fs.core.readSymlink(ctx, op)
}

func (fs *CatFileSystem) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return fs.core.statFS(ctx, op)
}

func (fs *CatFileSystem) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return fs.core.forgetInode(ctx, op)
}

func (fs *CatFileSystem) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return fs.core.openDir(ctx, op)
}

func (fs *CatFileSystem) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return fs.core.releaseDirHandle(ctx, op)
}

func (fs *CatFileSystem) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	row, ok := fs.idx.Lookup(op.Inode)
	if !ok {
		return fuse.ENOENT
	}

	dotDotIno := row.ParentIno
	if row.Ino == index.RootIno {
		dotDotIno = index.RootIno
	}

	synth := []fuseutil.Dirent{
		synthDirent(1, row.Ino, ".", fuseutil.DT_Directory),
		synthDirent(2, dotDotIno, "..", fuseutil.DT_Directory),
	}

	return writeReaddir(op, synth, fs.idx.Children(op.Inode), catKindOf)
}

func (fs *CatFileSystem) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	row, ok := fs.idx.Lookup(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	if !row.Vdir {
		// Only a chunk-directory's virtual file is ever opened directly.
		return fuse.EIO
	}

	children := fs.idx.Children(op.Inode)
	paths := make([]string, len(children))
	for i, c := range children {
		paths[i] = c.Path
	}

	op.Handle = fs.fileHandles.Open(handle.CatEntry{Chunks: paths})
	return nil
}

func (fs *CatFileSystem) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	entry, ok := fs.fileHandles.Get(op.Handle)
	if !ok {
		return fuse.EIO
	}

	row, ok := fs.idx.Lookup(op.Inode)
	if !ok {
		return fuse.EIO
	}
	info, err := fs.resolver.Resolve(row)
	if err != nil {
		fs.logger.Printf("ReadFile(inode=%d): %v", op.Inode, err)
		return fuse.EIO
	}

	type outcome struct {
		n   int
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		n, err := read.Cat(entry, fs.cfg.BlockSize, info.Size, op.Offset, op.Dst)
		done <- outcome{n, err}
	}()
	out := <-done

	if out.err != nil {
		fs.logger.Printf("ReadFile(inode=%d): %v", op.Inode, out.err)
		return fuse.EIO
	}
	op.BytesRead = out.n
	return nil
}

func (fs *CatFileSystem) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	fs.fileHandles.Release(op.Handle)
	return nil
}
