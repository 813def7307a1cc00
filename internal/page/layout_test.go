package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLeafNodeRoundTrip(t *testing.T) {
	var p Page
	InitializeLeafNode(&p)
	require.Equal(t, NodeTypeLeaf, p.NodeType())
	require.False(t, p.IsRoot())
	require.EqualValues(t, 0, p.LeafNumCells())

	p.SetIsRoot(true)
	p.SetParentPageNum(7)
	require.True(t, p.IsRoot())
	require.EqualValues(t, 7, p.ParentPageNum())

	p.SetLeafNumCells(2)
	p.SetLeafKey(0, 10)
	p.SetLeafKey(1, 20)
	require.EqualValues(t, 10, p.LeafKey(0))
	require.EqualValues(t, 20, p.LeafKey(1))
	require.EqualValues(t, 20, p.MaxKey())

	value := p.LeafValue(1)
	require.Len(t, value, RowSize)
}

func TestInternalNodeRoundTrip(t *testing.T) {
	var p Page
	InitializeInternalNode(&p)
	require.Equal(t, NodeTypeInternal, p.NodeType())

	p.SetInternalNumKeys(1)
	p.SetInternalChild(0, 3)
	p.SetInternalKey(0, 99)
	p.SetInternalRightChild(4)

	require.EqualValues(t, 3, p.InternalChild(0))
	require.EqualValues(t, 4, p.InternalChild(1))
	require.EqualValues(t, 99, p.InternalKey(0))
	require.EqualValues(t, 99, p.MaxKey())
}

func TestLayoutConstants(t *testing.T) {
	require.Equal(t, 6, CommonHeaderSize)
	require.Equal(t, 10, LeafHeaderSize)
	require.Equal(t, 293, RowSize)
	require.Equal(t, 297, LeafCellSize)
	require.Equal(t, 13, LeafMaxCells)
	require.Equal(t, 7, LeafRightSplitCount)
	require.Equal(t, 7, LeafLeftSplitCount)
	require.Equal(t, LeafLeftSplitCount+LeafRightSplitCount, LeafMaxCells+1)
	require.Equal(t, 14, InternalHeaderSize)
	require.Equal(t, 8, InternalCellSize)
}
