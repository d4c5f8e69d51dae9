package core

import (
	"context"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
	assert "github.com/ZanzyTHEbar/assert-lib"

	"taxtree/internal/types"
)

const noParent = math.MaxUint32

// Tree is an immutable, fully indexed taxonomy. Nodes live in an arena
// addressed by uint32 positions; every derived table stores positions.
// A Tree is safe for concurrent use by multiple readers.
type Tree struct {
	root     uint32
	nodes    []types.Node
	index    map[string]uint32
	parent   []uint32
	children [][]uint32
	depth    []int32

	names       map[string]*roaring.Bitmap
	sortedNames []string
}

// assemble indexes nodes into a Tree rooted at rootID. Every node except
// the root must carry a ParentID; nodes the breadth-first walk from the
// root cannot reach are left out and returned as disconnected.
func assemble(ctx context.Context, nodes []types.Node, rootID string) (*Tree, []string) {
	assert.NotEmpty(ctx, rootID, "root id must be set before indexing")

	index := make(map[string]uint32, len(nodes))
	for i, node := range nodes {
		index[node.ID] = uint32(i)
	}
	root := index[rootID]

	children := make([][]uint32, len(nodes))
	for i, node := range nodes {
		pos := uint32(i)
		if pos == root {
			continue
		}
		parent, ok := index[node.ParentID]
		if !ok {
			continue
		}
		children[parent] = append(children[parent], pos)
	}

	depth := make([]int32, len(nodes))
	for i := range depth {
		depth[i] = -1
	}
	depth[root] = 0
	queue := make([]uint32, 0, len(nodes))
	queue = append(queue, root)
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, child := range children[cur] {
			if depth[child] >= 0 {
				continue
			}
			depth[child] = depth[cur] + 1
			queue = append(queue, child)
		}
	}

	if len(queue) < len(nodes) {
		reached := make([]types.Node, 0, len(queue))
		var disconnected []string
		for i, node := range nodes {
			if depth[i] < 0 {
				disconnected = append(disconnected, node.ID)
				continue
			}
			reached = append(reached, node)
		}
		tree, _ := assemble(ctx, reached, rootID)
		return tree, disconnected
	}

	parent := make([]uint32, len(nodes))
	for i := range parent {
		parent[i] = noParent
	}
	for pos, kids := range children {
		for _, child := range kids {
			parent[child] = uint32(pos)
		}
	}

	names := map[string]*roaring.Bitmap{}
	for i, node := range nodes {
		bm, ok := names[node.Name]
		if !ok {
			bm = roaring.New()
			names[node.Name] = bm
		}
		bm.Add(uint32(i))
	}
	sortedNames := make([]string, 0, len(names))
	for name := range names {
		sortedNames = append(sortedNames, name)
	}
	sort.Strings(sortedNames)

	return &Tree{
		root:        root,
		nodes:       nodes,
		index:       index,
		parent:      parent,
		children:    children,
		depth:       depth,
		names:       names,
		sortedNames: sortedNames,
	}, nil
}
