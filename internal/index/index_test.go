package index_test

import (
	"testing"

	"github.com/jacobsa/fuse/fuseops"
	. "github.com/jacobsa/ogletest"

	"github.com/scfs/scfs/internal/index"
)

func TestIndex(t *testing.T) { RunTests(t) }

type IndexTest struct {
	idx *index.Index
}

func init() { RegisterTestSuite(&IndexTest{}) }

func (t *IndexTest) SetUp(ti *TestInfo) {
	t.idx = index.New()
}

func (t *IndexTest) NextInoStartsAtFirstFree() {
	ExpectEq(index.FirstFree, t.idx.NextIno())
	ExpectEq(index.FirstFree+1, t.idx.NextIno())
}

func (t *IndexTest) LookupMissReportsNotFound() {
	_, ok := t.idx.Lookup(999)
	ExpectFalse(ok)

	_, ok = t.idx.LookupChild(index.RootIno, "nope")
	ExpectFalse(ok)
}

func (t *IndexTest) AddAndLookupByIno() {
	row := &index.Row{Ino: index.RootIno, ParentIno: index.OutsideIno, FileName: ""}
	t.idx.Add(row)

	got, ok := t.idx.Lookup(index.RootIno)
	AssertTrue(ok)
	ExpectEq(row, got)
}

func (t *IndexTest) AddAndLookupByParentAndName() {
	root := &index.Row{Ino: index.RootIno, ParentIno: index.OutsideIno}
	t.idx.Add(root)

	child := &index.Row{Ino: index.FirstFree, ParentIno: index.RootIno, FileName: "hello"}
	t.idx.Add(child)

	got, ok := t.idx.LookupChild(index.RootIno, "hello")
	AssertTrue(ok)
	ExpectEq(child, got)
}

func (t *IndexTest) DuplicateInoPanics() {
	t.idx.Add(&index.Row{Ino: index.RootIno})

	didPanic := false
	func() {
		defer func() {
			if recover() != nil {
				didPanic = true
			}
		}()
		t.idx.Add(&index.Row{Ino: index.RootIno})
	}()

	ExpectTrue(didPanic)
}

func (t *IndexTest) ChildrenPreserveInsertionOrder() {
	root := &index.Row{Ino: index.RootIno}
	t.idx.Add(root)

	names := []string{"c", "a", "b"}
	for _, n := range names {
		t.idx.Add(&index.Row{Ino: t.idx.NextIno(), ParentIno: index.RootIno, FileName: n})
	}

	children := t.idx.Children(index.RootIno)
	AssertEq(len(names), len(children))
	for i, n := range names {
		ExpectEq(n, children[i].FileName)
	}
}

func (t *IndexTest) ChildrenOfUnknownParentIsEmpty() {
	ExpectEq(0, len(t.idx.Children(fuseops.InodeID(1234))))
}

func (t *IndexTest) MarkVdirFlipsTheBit() {
	row := &index.Row{Ino: index.RootIno}
	t.idx.Add(row)
	ExpectFalse(row.Vdir)

	t.idx.MarkVdir(index.RootIno)
	ExpectTrue(row.Vdir)
}

func (t *IndexTest) MarkVdirOnUnknownInoIsANoOp() {
	t.idx.MarkVdir(fuseops.InodeID(4321))
}
