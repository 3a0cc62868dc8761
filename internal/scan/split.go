package scan

import (
	"os"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/scfs/scfs/internal/index"
)

// Split walks mirrorRoot and builds the index.Index SplitFS serves from:
// every regular file becomes a virtual directory (Vdir) whose children are
// its byte-range chunks, each blockSize bytes long except possibly the
// last. A zero-length file still gets exactly one, empty chunk, matching
// the mirror's own notion that every presented file has at least one part.
func Split(mirrorRoot string, blockSize uint64) (*index.Index, error) {
	idx := index.New()

	onFile := func(idx *index.Index, parentIno fuseops.InodeID, path, name string, info os.FileInfo) {
		size := uint64(info.Size())

		numChunks := size / blockSize
		if size%blockSize != 0 || numChunks == 0 {
			numChunks++
		}

		vdirIno := idx.NextIno()
		idx.Add(&index.Row{
			Ino:       vdirIno,
			ParentIno: parentIno,
			Path:      path,
			FileName:  name,
			Vdir:      true,
			Size:      size,
		})

		for i := uint64(0); i < numChunks; i++ {
			part := i + 1
			start := i * blockSize
			end := start + blockSize
			if end > size {
				end = size
			}
			idx.Add(&index.Row{
				Ino:        idx.NextIno(),
				ParentIno:  vdirIno,
				Path:       path,
				FileName:   index.ChunkName(part),
				Part:       part,
				ChunkStart: start,
				Size:       end - start,
			})
		}
	}

	if err := walk(idx, mirrorRoot, onFile, nil); err != nil {
		return nil, err
	}

	return idx, nil
}
