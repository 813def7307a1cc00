package btree

import (
	"rowstore/internal/page"
	"rowstore/internal/pager"
	"rowstore/internal/rowcodec"
)

// InsertResult reports whether Insert succeeded or hit a user-level
// condition that the caller (the table facade) turns into an ExecuteResult.
type InsertResult int

const (
	InsertSuccess InsertResult = iota
	InsertDuplicateKey
	InsertTableFull
)

// Insert places row at its ordered position in the tree rooted at
// RootPageNum, splitting the target leaf if it is full. It never grows the
// tree past one internal root: a split whose parent is already an internal
// node reports InsertTableFull instead, per this spec's bounded-height
// scope.
func Insert(pgr *pager.Pager, row rowcodec.Row) (InsertResult, error) {
	cursor, err := Find(pgr, row.ID)
	if err != nil {
		return InsertTableFull, err
	}

	node, err := pgr.GetPage(cursor.PageNum)
	if err != nil {
		return InsertTableFull, err
	}

	if cursor.CellNum < node.LeafNumCells() && node.LeafKey(cursor.CellNum) == row.ID {
		return InsertDuplicateKey, nil
	}

	if node.LeafNumCells() >= page.LeafMaxCells {
		outOfScope, err := leafSplitAndInsert(pgr, cursor.PageNum, cursor.CellNum, row)
		if err != nil {
			return InsertTableFull, err
		}
		if outOfScope {
			return InsertTableFull, nil
		}
		return InsertSuccess, nil
	}

	leafInsert(node, cursor.CellNum, row)
	return InsertSuccess, nil
}

// leafInsert shifts cells right of insertAt by one slot and writes row into
// the freed slot. The caller must have already verified node has room.
func leafInsert(node *page.Page, insertAt uint32, row rowcodec.Row) {
	numCells := node.LeafNumCells()
	for i := numCells; i > insertAt; i-- {
		copy(node.LeafCell(i), node.LeafCell(i-1))
	}

	node.SetLeafNumCells(numCells + 1)
	node.SetLeafKey(insertAt, row.ID)
	if err := rowcodec.Serialize(row, node.LeafValue(insertAt)); err != nil {
		// Length checks already happened in statement preparation; a
		// mismatch here means the engine itself passed a malformed row.
		panic(err)
	}
}

// leafSplitAndInsert splits the full leaf at oldPageNum into itself (holding
// the left half) and a freshly allocated right sibling, inserting row into
// whichever half its key belongs to, then creates a new internal root above
// the two halves. Only a root leaf is split; a parent is never updated.
// Its bool return reports whether the split was abandoned because it would
// have required growing the tree past one internal root (out of scope,
// reported to the caller as InsertTableFull rather than a Go error).
func leafSplitAndInsert(pgr *pager.Pager, oldPageNum uint32, insertAt uint32, row rowcodec.Row) (bool, error) {
	oldNode, err := pgr.GetPage(oldPageNum)
	if err != nil {
		return false, err
	}

	if !oldNode.IsRoot() {
		// A split whose leaf already has an internal parent would need to
		// insert a second key into that parent; insertion into an existing
		// internal node is out of scope (see SPEC_FULL.md §3/§9).
		return true, nil
	}

	newPageNum, err := pgr.AllocateNewPage()
	if err != nil {
		return false, err
	}
	newNode, err := pgr.GetPage(newPageNum)
	if err != nil {
		return false, err
	}
	page.InitializeLeafNode(newNode)
	newNode.SetParentPageNum(oldNode.ParentPageNum())

	// Distribute cells [0, LeafMaxCells] (the MAX existing cells plus the
	// one being inserted) across old (left) and new (right), highest index
	// first so the shift-by-copy below never overwrites a cell it still
	// needs to read.
	for i := int(page.LeafMaxCells); i >= 0; i-- {
		var dest *page.Page
		if uint32(i) >= page.LeafLeftSplitCount {
			dest = newNode
		} else {
			dest = oldNode
		}
		idxWithinNode := uint32(i) % page.LeafLeftSplitCount

		switch {
		case uint32(i) == insertAt:
			dest.SetLeafKey(idxWithinNode, row.ID)
			if err := rowcodec.Serialize(row, dest.LeafValue(idxWithinNode)); err != nil {
				return false, err
			}
		case uint32(i) > insertAt:
			copy(dest.LeafCell(idxWithinNode), oldNode.LeafCell(uint32(i-1)))
		default:
			copy(dest.LeafCell(idxWithinNode), oldNode.LeafCell(uint32(i)))
		}
	}

	oldNode.SetLeafNumCells(page.LeafLeftSplitCount)
	newNode.SetLeafNumCells(page.LeafRightSplitCount)

	return false, createNewRoot(pgr, oldPageNum, newPageNum)
}

// createNewRoot turns page RootPageNum into an internal node with two
// children: a copy of the old root's contents (moved to a freshly allocated
// page) on the left, and rightPageNum on the right. This is the only way an
// internal node is ever created in this spec's scope.
func createNewRoot(pgr *pager.Pager, oldPageNum uint32, rightPageNum uint32) error {
	root, err := pgr.GetPage(oldPageNum)
	if err != nil {
		return err
	}
	rightChild, err := pgr.GetPage(rightPageNum)
	if err != nil {
		return err
	}

	leftPageNum, err := pgr.AllocateNewPage()
	if err != nil {
		return err
	}
	leftChild, err := pgr.GetPage(leftPageNum)
	if err != nil {
		return err
	}

	// Move the old root's full contents into the new left child page, then
	// reinitialize the root page in place as an internal node. The root
	// page number never changes (RootPageNum is a constant), so every
	// existing reference to "the root" keeps working.
	*leftChild = *root
	leftChild.SetIsRoot(false)
	leftChild.SetParentPageNum(oldPageNum)
	rightChild.SetParentPageNum(oldPageNum)

	page.InitializeInternalNode(root)
	root.SetIsRoot(true)
	root.SetInternalNumKeys(1)
	root.SetInternalChild(0, leftPageNum)
	root.SetInternalKey(0, leftChild.MaxKey())
	root.SetInternalRightChild(rightPageNum)

	return nil
}
