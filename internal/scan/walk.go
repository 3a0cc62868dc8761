// Package scan implements the one-time mirror walk that populates an
// index.Index: Split for SplitFS, Cat for CatFS. Both walks share the same
// directory-recursion shape; they differ only in how a regular file turns
// into rows, which is exactly the asymmetry the spec calls out between the
// two modes.
package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/scfs/scfs/internal/index"
)

// regularFileHandler is invoked once per regular file encountered during the
// walk, after the directory it lives in has already been added to idx.
// parentIno is that directory's inode; name is the file's base name; path is
// its absolute backing path.
type regularFileHandler func(idx *index.Index, parentIno fuseops.InodeID, path, name string, info os.FileInfo)

// walk adds a root row for mirrorRoot and recurses through the tree,
// delegating every regular file to onFile. Symbolic links and directories
// are handled identically by both modes, so that logic lives here once.
func walk(idx *index.Index, mirrorRoot string, onFile regularFileHandler, skip func(parentIno fuseops.InodeID, name string) bool) error {
	root := &index.Row{
		Ino:       index.RootIno,
		ParentIno: index.OutsideIno,
		Path:      mirrorRoot,
		FileName:  "",
		IsDir:     true,
	}
	idx.Add(root)

	return walkDir(idx, root.Ino, mirrorRoot, onFile, skip)
}

func walkDir(idx *index.Index, dirIno fuseops.InodeID, dirPath string, onFile regularFileHandler, skip func(fuseops.InodeID, string) bool) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("scan: reading %s: %w", dirPath, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if skip != nil && skip(dirIno, name) {
			continue
		}

		path := filepath.Join(dirPath, name)

		linfo, err := os.Lstat(path)
		if err != nil {
			return fmt.Errorf("scan: lstat %s: %w", path, err)
		}

		switch {
		case linfo.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("scan: readlink %s: %w", path, err)
			}
			idx.Add(&index.Row{
				Ino:       idx.NextIno(),
				ParentIno: dirIno,
				Path:      path,
				FileName:  name,
				Symlink:   target,
			})

		case linfo.IsDir():
			sub := &index.Row{
				Ino:       idx.NextIno(),
				ParentIno: dirIno,
				Path:      path,
				FileName:  name,
				IsDir:     true,
			}
			idx.Add(sub)
			if err := walkDir(idx, sub.Ino, path, onFile, skip); err != nil {
				return err
			}

		case linfo.Mode().IsRegular():
			onFile(idx, dirIno, path, name, linfo)

		default:
			// Devices, sockets, FIFOs and anything else are silently skipped.
		}
	}

	return nil
}
