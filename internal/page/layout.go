// Package page defines the bit-exact layout of a 4096-byte database page
// and the typed accessors over it. Every tree node, leaf or internal, lives
// in one Page; this package never touches disk or the page cache — it only
// knows how to read and write bytes at fixed offsets.
package page

import "encoding/binary"

// Size is the fixed size of every page and the unit of disk I/O.
const Size = 4096

// MaxPages bounds the total number of pages a single database file may hold
// (400 KiB at Size=4096).
const MaxPages = 100

// NodeType distinguishes a leaf page from an internal page. The numeric
// values match the original C tutorial this format descends from.
type NodeType uint8

const (
	NodeTypeInternal NodeType = 0
	NodeTypeLeaf     NodeType = 1
)

// Common header: every page starts with these 6 bytes regardless of type.
const (
	nodeTypeOffset    = 0
	isRootOffset      = 1
	parentPointerOffset = 2
	CommonHeaderSize  = 6
)

// Leaf header: common header plus a 4-byte cell count.
const (
	leafNumCellsOffset = CommonHeaderSize
	LeafHeaderSize     = leafNumCellsOffset + 4
)

// Leaf body layout. RowSize is the fixed encoded size of a Row (see
// package rowcodec): 4-byte id + 33-byte username + 256-byte email.
const (
	LeafKeySize  = 4
	RowSize      = 293
	LeafCellSize = LeafKeySize + RowSize

	leafSpaceForCells = Size - LeafHeaderSize
	// LeafMaxCells is the number of (key, row) cells a leaf page can hold.
	LeafMaxCells = leafSpaceForCells / LeafCellSize
)

// Split counts. The two post-split leaves together must hold exactly
// LeafMaxCells+1 keys (the MAX existing keys plus the one being inserted);
// see SPEC_FULL.md for why this is (MAX+1)/2 and not MAX/2.
const (
	LeafRightSplitCount = (LeafMaxCells + 1) / 2
	LeafLeftSplitCount  = (LeafMaxCells + 1) - LeafRightSplitCount
)

// Internal header: common header, then a 4-byte key count and a 4-byte
// rightmost-child page number.
const (
	internalNumKeysOffset    = CommonHeaderSize
	internalRightChildOffset = internalNumKeysOffset + 4
	InternalHeaderSize       = internalRightChildOffset + 4
)

// Internal body layout: each cell is a child page number followed by the
// maximum key in that child's subtree.
const (
	InternalChildSize = 4
	InternalKeySize   = 4
	InternalCellSize  = InternalChildSize + InternalKeySize

	internalSpaceForCells = Size - InternalHeaderSize
	InternalMaxCells      = internalSpaceForCells / InternalCellSize
)

// Page is one 4096-byte node buffer.
type Page [Size]byte

// --- common header ---

func (p *Page) NodeType() NodeType {
	return NodeType(p[nodeTypeOffset])
}

func (p *Page) SetNodeType(t NodeType) {
	p[nodeTypeOffset] = byte(t)
}

func (p *Page) IsRoot() bool {
	return p[isRootOffset] != 0
}

func (p *Page) SetIsRoot(isRoot bool) {
	if isRoot {
		p[isRootOffset] = 1
	} else {
		p[isRootOffset] = 0
	}
}

func (p *Page) ParentPageNum() uint32 {
	return binary.LittleEndian.Uint32(p[parentPointerOffset:])
}

func (p *Page) SetParentPageNum(parent uint32) {
	binary.LittleEndian.PutUint32(p[parentPointerOffset:], parent)
}

// --- leaf node ---

func (p *Page) LeafNumCells() uint32 {
	return binary.LittleEndian.Uint32(p[leafNumCellsOffset:])
}

func (p *Page) SetLeafNumCells(n uint32) {
	binary.LittleEndian.PutUint32(p[leafNumCellsOffset:], n)
}

func (p *Page) leafCellOffset(cellNum uint32) int {
	return LeafHeaderSize + int(cellNum)*LeafCellSize
}

// LeafCell returns the full key+row slice for cell cellNum.
func (p *Page) LeafCell(cellNum uint32) []byte {
	off := p.leafCellOffset(cellNum)
	return p[off : off+LeafCellSize]
}

func (p *Page) LeafKey(cellNum uint32) uint32 {
	return binary.LittleEndian.Uint32(p.LeafCell(cellNum))
}

func (p *Page) SetLeafKey(cellNum uint32, key uint32) {
	binary.LittleEndian.PutUint32(p.LeafCell(cellNum), key)
}

// LeafValue returns the RowSize-byte slice holding the row at cellNum.
func (p *Page) LeafValue(cellNum uint32) []byte {
	cell := p.LeafCell(cellNum)
	return cell[LeafKeySize:]
}

// InitializeLeafNode sets p's header to an empty, non-root leaf. Bytes past
// the header (including the parent page number) are left as they were.
func InitializeLeafNode(p *Page) {
	p.SetNodeType(NodeTypeLeaf)
	p.SetIsRoot(false)
	p.SetLeafNumCells(0)
}

// --- internal node ---

func (p *Page) InternalNumKeys() uint32 {
	return binary.LittleEndian.Uint32(p[internalNumKeysOffset:])
}

func (p *Page) SetInternalNumKeys(n uint32) {
	binary.LittleEndian.PutUint32(p[internalNumKeysOffset:], n)
}

func (p *Page) InternalRightChild() uint32 {
	return binary.LittleEndian.Uint32(p[internalRightChildOffset:])
}

func (p *Page) SetInternalRightChild(pageNum uint32) {
	binary.LittleEndian.PutUint32(p[internalRightChildOffset:], pageNum)
}

func (p *Page) internalCellOffset(cellNum uint32) int {
	return InternalHeaderSize + int(cellNum)*InternalCellSize
}

func (p *Page) InternalCell(cellNum uint32) []byte {
	off := p.internalCellOffset(cellNum)
	return p[off : off+InternalCellSize]
}

// InternalChild returns the page number of the childNum'th child: for
// childNum == numKeys this is the rightmost child, otherwise it is read
// from the corresponding cell.
func (p *Page) InternalChild(childNum uint32) uint32 {
	numKeys := p.InternalNumKeys()
	if childNum == numKeys {
		return p.InternalRightChild()
	}
	return binary.LittleEndian.Uint32(p.InternalCell(childNum))
}

func (p *Page) SetInternalChild(childNum uint32, pageNum uint32) {
	numKeys := p.InternalNumKeys()
	if childNum == numKeys {
		p.SetInternalRightChild(pageNum)
		return
	}
	binary.LittleEndian.PutUint32(p.InternalCell(childNum), pageNum)
}

func (p *Page) InternalKey(keyNum uint32) uint32 {
	cell := p.InternalCell(keyNum)
	return binary.LittleEndian.Uint32(cell[InternalChildSize:])
}

func (p *Page) SetInternalKey(keyNum uint32, key uint32) {
	cell := p.InternalCell(keyNum)
	binary.LittleEndian.PutUint32(cell[InternalChildSize:], key)
}

// InitializeInternalNode sets p's header to an empty, non-root internal node.
// The right child, the parent page number and the cell bytes are left as
// they were.
func InitializeInternalNode(p *Page) {
	p.SetNodeType(NodeTypeInternal)
	p.SetIsRoot(false)
	p.SetInternalNumKeys(0)
}

// MaxKey returns the largest key of a leaf. For an internal node it returns
// the key of the last cell; the right child's keys are not consulted.
func (p *Page) MaxKey() uint32 {
	switch p.NodeType() {
	case NodeTypeInternal:
		return p.InternalKey(p.InternalNumKeys() - 1)
	default:
		return p.LeafKey(p.LeafNumCells() - 1)
	}
}
