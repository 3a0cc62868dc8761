package fs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/scfs/scfs/internal/attr"
	"github.com/scfs/scfs/internal/config"
	"github.com/scfs/scfs/internal/handle"
	"github.com/scfs/scfs/internal/index"
	"github.com/scfs/scfs/internal/read"
)

// SplitFileSystem presents every regular file under a mirror as a virtual
// directory of fixed-size chunks, plus a synthetic .scfs_config file at its
// root recording the block size used.
type SplitFileSystem struct {
	fuseutil.NotImplementedFileSystem
	core

	cfg         config.Config
	configJSON  []byte
	fileHandles *handle.Table[handle.SplitEntry]
}

var _ fuseutil.FileSystem = (*SplitFileSystem)(nil)

// NewSplit builds a SplitFileSystem over an already-populated index.
func NewSplit(idx *index.Index, cfg config.Config, logger *log.Logger) (*SplitFileSystem, error) {
	data, err := cfg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("fs: marshaling config: %w", err)
	}

	return &SplitFileSystem{
		core:        newCore(idx, logger),
		cfg:         cfg,
		configJSON:  data,
		fileHandles: handle.NewTable[handle.SplitEntry](),
	}, nil
}

func (fs *SplitFileSystem) configEntry() fuseops.ChildInodeEntry {
	return fuseops.ChildInodeEntry{
		Child: index.ConfigIno,
		Attributes: fuseops.InodeAttributes{
			Size:  uint64(len(fs.configJSON)),
			Nlink: 1,
			Mode:  0444,
			Mtime: time.Now(),
		},
		AttributesExpiration: attr.Expiration(fs.clock),
		EntryExpiration:      attr.Expiration(fs.clock),
	}
}

func (fs *SplitFileSystem) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	if op.Parent == index.RootIno && op.Name == config.FileName {
		op.Entry = fs.configEntry()
		return nil
	}
	return fs.core.lookUpInode(ctx, op)
}

func (fs *SplitFileSystem) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	if op.Inode == index.ConfigIno {
		op.Attributes = fs.configEntry().Attributes
		op.AttributesExpiration = attr.Expiration(fs.clock)
		return nil
	}
	return fs.core.getInodeAttributes(ctx, op)
}

func (fs *SplitFileSystem) ReadSymlink(ctx context.Context, op *fuseops.ReadSymlinkOp) error {
	return fs.core.readSymlink(ctx, op)
}

func (fs *SplitFileSystem) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	return fs.core.statFS(ctx, op)
}

func (fs *SplitFileSystem) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return fs.core.forgetInode(ctx, op)
}

func (fs *SplitFileSystem) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return fs.core.openDir(ctx, op)
}

func (fs *SplitFileSystem) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return fs.core.releaseDirHandle(ctx, op)
}

func (fs *SplitFileSystem) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
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
	if row.Ino == index.RootIno {
		synth = append(synth, synthDirent(3, index.ConfigIno, config.FileName, fuseutil.DT_File))
	}

	return writeReaddir(op, synth, fs.idx.Children(op.Inode), splitKindOf)
}

func (fs *SplitFileSystem) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	if op.Inode == index.ConfigIno {
		op.Handle = fs.fileHandles.Open(handle.SplitEntry{IsConfig: true})
		return nil
	}

	row, ok := fs.idx.Lookup(op.Inode)
	if !ok {
		return fuse.ENOENT
	}
	if row.Part == 0 {
		// Only chunks are ever opened directly; their owning vdir is opened
		// as a directory instead.
		return fuse.EIO
	}

	op.Handle = fs.fileHandles.Open(handle.SplitEntry{
		Path:       row.Path,
		ChunkStart: row.ChunkStart,
		ChunkSize:  row.Size,
	})
	return nil
}

func (fs *SplitFileSystem) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	entry, ok := fs.fileHandles.Get(op.Handle)
	if !ok {
		return fuse.EIO
	}

	if entry.IsConfig {
		if op.Offset >= int64(len(fs.configJSON)) {
			op.BytesRead = 0
			return nil
		}
		op.BytesRead = copy(op.Dst, fs.configJSON[op.Offset:])
		return nil
	}

	type outcome struct {
		n   int
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		n, err := read.Split(entry, entry.ChunkSize, op.Offset, op.Dst)
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

func (fs *SplitFileSystem) ReleaseFileHandle(ctx context.Context, op *fuseops.ReleaseFileHandleOp) error {
	fs.fileHandles.Release(op.Handle)
	return nil
}
