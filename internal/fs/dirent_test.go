package fs

import (
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	. "github.com/jacobsa/ogletest"

	"github.com/scfs/scfs/internal/index"
)

func TestDirent(t *testing.T) { RunTests(t) }

type DirentTest struct{}

func init() { RegisterTestSuite(&DirentTest{}) }

func (t *DirentTest) EmitsSynthBeforeChildrenOnAFreshListing() {
	root := &index.Row{Ino: index.RootIno, FileName: ""}
	synth := []fuseutil.Dirent{
		synthDirent(1, root.Ino, ".", fuseutil.DT_Directory),
		synthDirent(2, root.Ino, "..", fuseutil.DT_Directory),
	}
	children := []*index.Row{
		{Ino: 10, FileName: "a"},
		{Ino: 11, FileName: "b"},
	}

	op := &fuseops.ReadDirOp{Offset: 0, Dst: make([]byte, 4096)}
	AssertEq(nil, writeReaddir(op, synth, children, splitKindOf))
	ExpectTrue(op.BytesRead > 0)

	// A buffer with no room at all can't hold even the first entry, so
	// nothing is written and the kernel is expected to retry with more room.
	tooSmall := &fuseops.ReadDirOp{Offset: 0, Dst: make([]byte, 4)}
	AssertEq(nil, writeReaddir(tooSmall, synth, children, splitKindOf))
	ExpectEq(0, tooSmall.BytesRead)
}

func (t *DirentTest) SkipsSynthAlreadyConsumedAtTheGivenOffset() {
	root := &index.Row{Ino: index.RootIno, FileName: ""}
	synth := []fuseutil.Dirent{
		synthDirent(1, root.Ino, ".", fuseutil.DT_Directory),
		synthDirent(2, root.Ino, "..", fuseutil.DT_Directory),
	}
	children := []*index.Row{
		{Ino: 10, FileName: "a"},
	}

	// Resuming at offset 2 means both synthetic entries were already
	// delivered in a prior call; only the backing child should be written.
	fromStart := &fuseops.ReadDirOp{Offset: 0, Dst: make([]byte, 4096)}
	AssertEq(nil, writeReaddir(fromStart, synth, children, splitKindOf))

	fromAfterSynth := &fuseops.ReadDirOp{Offset: 2, Dst: make([]byte, 4096)}
	AssertEq(nil, writeReaddir(fromAfterSynth, synth, children, splitKindOf))

	ExpectTrue(fromAfterSynth.BytesRead > 0)
	ExpectTrue(fromAfterSynth.BytesRead < fromStart.BytesRead)
}

func (t *DirentTest) PastTheEndOfTheListingWritesNothing() {
	root := &index.Row{Ino: index.RootIno, FileName: ""}
	synth := []fuseutil.Dirent{
		synthDirent(1, root.Ino, ".", fuseutil.DT_Directory),
		synthDirent(2, root.Ino, "..", fuseutil.DT_Directory),
	}
	children := []*index.Row{
		{Ino: 10, FileName: "a"},
	}

	op := &fuseops.ReadDirOp{Offset: 3, Dst: make([]byte, 4096)}
	AssertEq(nil, writeReaddir(op, synth, children, splitKindOf))
	ExpectEq(0, op.BytesRead)
}

func (t *DirentTest) SplitKindOfReflectsSymlinkVdirAndPlainRows() {
	ExpectEq(fuseutil.DT_Link, splitKindOf(&index.Row{Symlink: "target"}))
	ExpectEq(fuseutil.DT_Directory, splitKindOf(&index.Row{IsDir: true}))
	// In SplitFS, Vdir marks a regular file presented as a directory of chunks.
	ExpectEq(fuseutil.DT_Directory, splitKindOf(&index.Row{Vdir: true}))
	ExpectEq(fuseutil.DT_File, splitKindOf(&index.Row{Part: 1}))
}

func (t *DirentTest) CatKindOfReflectsSymlinkVdirAndPlainRows() {
	ExpectEq(fuseutil.DT_Link, catKindOf(&index.Row{Symlink: "target"}))
	ExpectEq(fuseutil.DT_Directory, catKindOf(&index.Row{IsDir: true}))
	// In CatFS, Vdir marks a chunk-directory reconstructed into a single
	// regular file — the inverse of what Vdir means in SplitFS.
	ExpectEq(fuseutil.DT_File, catKindOf(&index.Row{IsDir: true, Vdir: true}))
}
