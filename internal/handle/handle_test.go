package handle_test

import (
	"testing"

	. "github.com/jacobsa/ogletest"

	"github.com/scfs/scfs/internal/handle"
)

func TestHandle(t *testing.T) { RunTests(t) }

type HandleTest struct {
	table *handle.Table[handle.SplitEntry]
}

func init() { RegisterTestSuite(&HandleTest{}) }

func (t *HandleTest) SetUp(ti *TestInfo) {
	t.table = handle.NewTable[handle.SplitEntry]()
}

func (t *HandleTest) OpenReturnsDistinctIDs() {
	a := t.table.Open(handle.SplitEntry{Path: "a"})
	b := t.table.Open(handle.SplitEntry{Path: "b"})
	ExpectNe(a, b)
}

func (t *HandleTest) GetReturnsWhatWasOpened() {
	id := t.table.Open(handle.SplitEntry{Path: "a", ChunkStart: 10, ChunkSize: 20})

	entry, ok := t.table.Get(id)
	AssertTrue(ok)
	ExpectEq("a", entry.Path)
	ExpectEq(10, entry.ChunkStart)
	ExpectEq(20, entry.ChunkSize)
}

func (t *HandleTest) GetOnUnknownHandleReportsNotFound() {
	_, ok := t.table.Get(999)
	ExpectFalse(ok)
}

func (t *HandleTest) ReleaseForgetsTheHandle() {
	id := t.table.Open(handle.SplitEntry{Path: "a"})
	t.table.Release(id)

	_, ok := t.table.Get(id)
	ExpectFalse(ok)
}

func (t *HandleTest) ReleaseOfUnknownHandleIsANoOp() {
	t.table.Release(999)
	t.table.Release(999)
}
