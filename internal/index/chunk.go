package index

import "fmt"

// ChunkPrefix is the literal prefix every chunk file name starts with.
const ChunkPrefix = "scfs."

// ChunkName formats the name a chunk gets inside its owning virtual
// directory. part is 1-based; the presented sequence number is part-1,
// zero-padded to ten digits.
func ChunkName(part uint64) string {
	return fmt.Sprintf("%s%010d", ChunkPrefix, part-1)
}
