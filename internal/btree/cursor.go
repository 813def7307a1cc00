package btree

import (
	"github.com/pkg/errors"

	"rowstore/internal/page"
	"rowstore/internal/pager"
)

// RootPageNum is the page number of the tree root. It never changes: a
// root split reinitializes page 0 in place as an internal node rather than
// moving the root elsewhere.
const RootPageNum uint32 = 0

// Cursor is a position (page, cell) within the tree, plus a sentinel for
// "one past the last element." It borrows the Pager and does not outlive
// the operation that created it.
type Cursor struct {
	pgr        *pager.Pager
	PageNum    uint32
	CellNum    uint32
	EndOfTable bool
}

// TableStart returns a cursor at the leftmost cell of the leftmost leaf.
func TableStart(pgr *pager.Pager) (*Cursor, error) {
	leafPage, err := firstLeaf(pgr)
	if err != nil {
		return nil, err
	}

	node, err := pgr.GetPage(leafPage)
	if err != nil {
		return nil, err
	}

	return &Cursor{
		pgr:        pgr,
		PageNum:    leafPage,
		CellNum:    0,
		EndOfTable: node.LeafNumCells() == 0,
	}, nil
}

// firstLeaf descends to the leftmost leaf page, starting from the root.
// Within this spec's scope the tree has height at most 2, so this is at
// most one hop through an internal root.
func firstLeaf(pgr *pager.Pager) (uint32, error) {
	root, err := pgr.GetPage(RootPageNum)
	if err != nil {
		return 0, err
	}
	if root.NodeType() == page.NodeTypeLeaf {
		return RootPageNum, nil
	}
	return root.InternalChild(0), nil
}

// Find descends from the root to the leaf that should contain key and
// positions a cursor there: CellNum is the index of an exact match, or the
// index at which key would need to be inserted to preserve order.
func Find(pgr *pager.Pager, key uint32) (*Cursor, error) {
	return find(pgr, RootPageNum, key)
}

func find(pgr *pager.Pager, pageNum uint32, key uint32) (*Cursor, error) {
	node, err := pgr.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	if node.NodeType() == page.NodeTypeLeaf {
		return leafFind(pgr, pageNum, key)
	}
	return internalFind(pgr, pageNum, key)
}

func internalFind(pgr *pager.Pager, pageNum uint32, key uint32) (*Cursor, error) {
	node, err := pgr.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	numKeys := node.InternalNumKeys()
	minIdx, maxIdx := uint32(0), numKeys
	for minIdx != maxIdx {
		mid := (minIdx + maxIdx) / 2
		if node.InternalKey(mid) >= key {
			maxIdx = mid
		} else {
			minIdx = mid + 1
		}
	}

	childPage := node.InternalChild(minIdx)
	return find(pgr, childPage, key)
}

func leafFind(pgr *pager.Pager, pageNum uint32, key uint32) (*Cursor, error) {
	node, err := pgr.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	minIdx, onePastMax := uint32(0), node.LeafNumCells()
	for minIdx != onePastMax {
		mid := (minIdx + onePastMax) / 2
		at := node.LeafKey(mid)
		if key == at {
			return &Cursor{pgr: pgr, PageNum: pageNum, CellNum: mid}, nil
		}
		if key < at {
			onePastMax = mid
		} else {
			minIdx = mid + 1
		}
	}

	return &Cursor{pgr: pgr, PageNum: pageNum, CellNum: minIdx}, nil
}

// Value returns the RowSize-byte slice for the cursor's current cell.
func (c *Cursor) Value() ([]byte, error) {
	node, err := c.pgr.GetPage(c.PageNum)
	if err != nil {
		return nil, err
	}
	return node.LeafValue(c.CellNum), nil
}

// Advance moves the cursor to the next cell in ascending key order. When
// the current leaf is exhausted it tries to hop to the right sibling via
// the parent — see SPEC_FULL.md for why this does not need a persisted
// sibling pointer within this spec's bounded tree height.
func (c *Cursor) Advance() error {
	node, err := c.pgr.GetPage(c.PageNum)
	if err != nil {
		return err
	}

	c.CellNum++
	if c.CellNum < node.LeafNumCells() {
		return nil
	}

	nextPage, ok, err := nextSibling(c.pgr, c.PageNum)
	if err != nil {
		return err
	}
	if !ok {
		c.EndOfTable = true
		return nil
	}

	c.PageNum = nextPage
	c.CellNum = 0
	siblingNode, err := c.pgr.GetPage(nextPage)
	if err != nil {
		return err
	}
	c.EndOfTable = siblingNode.LeafNumCells() == 0
	return nil
}

// nextSibling finds the leaf immediately to the right of pageNum by
// consulting pageNum's parent, if any. It returns ok=false when pageNum is
// the rightmost leaf under its parent (or has no parent at all).
func nextSibling(pgr *pager.Pager, pageNum uint32) (uint32, bool, error) {
	node, err := pgr.GetPage(pageNum)
	if err != nil {
		return 0, false, err
	}
	if node.IsRoot() {
		return 0, false, nil
	}

	parent, err := pgr.GetPage(node.ParentPageNum())
	if err != nil {
		return 0, false, err
	}

	numKeys := parent.InternalNumKeys()
	for i := uint32(0); i < numKeys; i++ {
		if parent.InternalChild(i) == pageNum {
			return parent.InternalChild(i + 1), true, nil
		}
	}
	if parent.InternalRightChild() == pageNum {
		return 0, false, nil
	}
	return 0, false, errors.Errorf("btree: page %d not found among its parent %d's children", pageNum, node.ParentPageNum())
}
