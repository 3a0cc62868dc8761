package fs

import (
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/scfs/scfs/internal/index"
)

// writeReaddir fills op.Dst starting at op.Offset, interleaving synth (the
// synthetic entries for this directory — always "." and "..", plus
// ".scfs_config" at the SplitFS root) ahead of children, the backing rows
// for this directory in scan order. It follows the kernel's cookie/offset
// resume contract exactly as documented on fuseops.ReadDirOp.Offset: a
// later call may be asked to resume at any offset a previous call returned
// a dirent with, so cookies must be stable across calls for a given
// listing and monotonically increasing within it.
func writeReaddir(op *fuseops.ReadDirOp, synth []fuseutil.Dirent, children []*index.Row, kind func(*index.Row) fuseutil.DirentType) error {
	h := fuseops.DirOffset(len(synth))

	for _, d := range synth {
		if op.Offset >= d.Offset {
			continue
		}
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], d)
		if n == 0 {
			return nil
		}
		op.BytesRead += n
	}

	start := int64(op.Offset) - int64(h)
	if start < 0 {
		start = 0
	}
	if start > int64(len(children)) {
		start = int64(len(children))
	}

	for idx := int(start); idx < len(children); idx++ {
		row := children[idx]
		d := fuseutil.Dirent{
			Offset: h + fuseops.DirOffset(idx) + 1,
			Inode:  row.Ino,
			Name:   row.FileName,
			Type:   kind(row),
		}
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], d)
		if n == 0 {
			break
		}
		op.BytesRead += n
	}

	return nil
}

// synthDirent builds the fixed "." / ".." / config entries every directory
// listing starts with. cookie is this entry's position, 1-based.
func synthDirent(cookie fuseops.DirOffset, inode fuseops.InodeID, name string, t fuseutil.DirentType) fuseutil.Dirent {
	return fuseutil.Dirent{
		Offset: cookie,
		Inode:  inode,
		Name:   name,
		Type:   t,
	}
}

// splitKindOf derives a directory entry's type for a SplitFS listing, where
// Vdir marks a regular file repurposed to look like a directory of chunks.
func splitKindOf(row *index.Row) fuseutil.DirentType {
	switch {
	case row.Symlink != "":
		return fuseutil.DT_Link
	case row.IsDir, row.Vdir:
		return fuseutil.DT_Directory
	default:
		return fuseutil.DT_File
	}
}

// catKindOf derives a directory entry's type for a CatFS listing, where
// Vdir marks a chunk-directory reconstructed into a single regular file —
// the inverse of SplitFS's Vdir meaning, per spec.md §4.6.
func catKindOf(row *index.Row) fuseutil.DirentType {
	switch {
	case row.Symlink != "":
		return fuseutil.DT_Link
	case row.Vdir:
		return fuseutil.DT_File
	case row.IsDir:
		return fuseutil.DT_Directory
	default:
		return fuseutil.DT_File
	}
}
