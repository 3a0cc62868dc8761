// Package index holds the in-memory metadata table that both SplitFS and
// CatFS serve requests from. It is populated once, by a single pass of
// internal/scan, before the file system is handed to the FUSE connection,
// and is never mutated again: every exported read method is therefore safe
// to call concurrently without a lock, the same way roloopbackfs's inode
// table is safe because it is keyed by immutable *inodeEntry values.
package index

import (
	"fmt"

	"github.com/jacobsa/fuse/fuseops"
)

// Reserved inode numbers. OutsideIno marks a parent that does not resolve
// to any row in the table (used by the scanner to represent "no parent" for
// the synthesized root's own ".." entry without creating a cycle).
const (
	OutsideIno fuseops.InodeID = 0
	RootIno    fuseops.InodeID = fuseops.RootInodeID // 1
	ConfigIno  fuseops.InodeID = 2
	FirstFree  fuseops.InodeID = 10
)

// Row is one entity in the mirrored tree: a directory, a regular file
// presented whole, a virtual directory standing in for a chunked file, a
// chunk of such a file, or a symbolic link.
type Row struct {
	Ino       fuseops.InodeID
	ParentIno fuseops.InodeID
	Path      string // absolute path in the backing mirror
	FileName  string // name as it appears under ParentIno in the mount
	Part       uint64 // 1-based chunk index; 0 for non-chunk rows
	ChunkStart uint64 // byte offset of this chunk within its backing file; 0 for non-chunk rows
	Vdir       bool   // SplitFS: a regular file presented as a directory of chunks; CatFS: a chunk-directory presented as one file
	Symlink    string // symlink target; empty unless this row is a symlink
	Size       uint64 // backing size in bytes, as observed at scan time
	IsDir      bool   // true for real, on-disk directories
}

type parentName struct {
	parent fuseops.InodeID
	name   string
}

// Index is the read side of the Metadata Index. It supports the two lookups
// every FUSE operation needs: by inode number, and by (parent inode, child
// name).
type Index struct {
	byIno      map[fuseops.InodeID]*Row
	byParent   map[parentName]*Row
	children   map[fuseops.InodeID][]*Row
	nextIno    fuseops.InodeID
}

// New returns an empty Index whose inode counter starts at FirstFree, ready
// for a scan.Split or scan.Cat call to fill in.
func New() *Index {
	return &Index{
		byIno:    make(map[fuseops.InodeID]*Row),
		byParent: make(map[parentName]*Row),
		children: make(map[fuseops.InodeID][]*Row),
		nextIno:  FirstFree,
	}
}

// NextIno allocates and returns the next available inode number. Callers
// are expected to be the scanner only, during the single population pass.
func (x *Index) NextIno() fuseops.InodeID {
	ino := x.nextIno
	x.nextIno++
	return ino
}

// Add inserts row into the table. Children are kept in the order they are
// added; the scanner adds them in os.ReadDir's name-sorted order, so chunk
// rows land in ascending Part order for free.
func (x *Index) Add(row *Row) {
	if _, exists := x.byIno[row.Ino]; exists {
		panic(fmt.Sprintf("index: duplicate inode %d", row.Ino))
	}
	x.byIno[row.Ino] = row
	x.byParent[parentName{row.ParentIno, row.FileName}] = row
	x.children[row.ParentIno] = append(x.children[row.ParentIno], row)
}

// MarkVdir flips the Vdir bit on an already-inserted row. scan.Cat calls
// this during the walk, once per chunk added, to mark every directory that
// holds at least one chunk.
func (x *Index) MarkVdir(ino fuseops.InodeID) {
	if row, ok := x.byIno[ino]; ok {
		row.Vdir = true
	}
}

// Lookup returns the row for a given inode number.
func (x *Index) Lookup(ino fuseops.InodeID) (*Row, bool) {
	row, ok := x.byIno[ino]
	return row, ok
}

// LookupChild returns the row named name under parent.
func (x *Index) LookupChild(parent fuseops.InodeID, name string) (*Row, bool) {
	row, ok := x.byParent[parentName{parent, name}]
	return row, ok
}

// Children returns the rows directly under parent, in scan order.
func (x *Index) Children(parent fuseops.InodeID) []*Row {
	return x.children[parent]
}
