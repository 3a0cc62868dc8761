package scan

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jacobsa/fuse/fuseops"

	"github.com/scfs/scfs/internal/config"
	"github.com/scfs/scfs/internal/index"
)

// Cat walks mirrorRoot — expected to be a SplitFS mirror — and builds the
// index.Index CatFS serves from, plus the Config recovered from
// .scfs_config. Every directory that turns out to hold at least one chunk
// is marked Vdir as its chunks are discovered, which stands in for the
// original implementation's post-walk "mark parents of chunk rows" sweep.
func Cat(mirrorRoot string) (*index.Index, config.Config, error) {
	cfg, err := config.Load(mirrorRoot)
	if err != nil {
		return nil, config.Config{}, err
	}

	idx := index.New()

	skip := func(parentIno fuseops.InodeID, name string) bool {
		return parentIno == index.RootIno && name == config.FileName
	}

	onFile := func(idx *index.Index, parentIno fuseops.InodeID, path, name string, info os.FileInfo) {
		part := parseChunkPart(path, name)

		idx.Add(&index.Row{
			Ino:       idx.NextIno(),
			ParentIno: parentIno,
			Path:      path,
			FileName:  name,
			Part:      part,
			Size:      uint64(info.Size()),
		})
		idx.MarkVdir(parentIno)
	}

	if err := walk(idx, mirrorRoot, onFile, skip); err != nil {
		return nil, config.Config{}, err
	}

	return idx, cfg, nil
}

// parseChunkPart recovers the 1-based part number from a chunk's file name.
// A mirror that isn't actually a SplitFS output — a stray regular file whose
// name is not "scfs." followed by a decimal number — is a malformed input CatFS has
// no recovery strategy for, so this panics rather than silently degrading,
// the same hard requirement the original tool enforces with an unwrap().
func parseChunkPart(path, name string) uint64 {
	rest, ok := strings.CutPrefix(name, index.ChunkPrefix)
	if !ok {
		panic(fmt.Sprintf("scan: %s is not a chunk file: name %q does not start with %q", path, name, index.ChunkPrefix))
	}

	seq, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("scan: %s is not a chunk file: %v", path, err))
	}

	return seq + 1
}
