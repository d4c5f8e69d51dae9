package core

import (
	"strings"

	"github.com/RoaringBitmap/roaring"

	"taxtree/internal/types"
)

func (t *Tree) lookup(id string) (uint32, error) {
	pos, ok := t.index[id]
	if !ok {
		return 0, &UnknownNodeError{ID: id}
	}
	return pos, nil
}

func (t *Tree) Root() string {
	return t.nodes[t.root].ID
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

func (t *Tree) Get(id string) (types.Node, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return types.Node{}, err
	}
	return t.nodes[pos], nil
}

// Nodes returns a copy of all nodes in arena order.
func (t *Tree) Nodes() []types.Node {
	return append([]types.Node(nil), t.nodes...)
}

// Parent returns the parent id, or "" for the root.
func (t *Tree) Parent(id string) (string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	if t.parent[pos] == noParent {
		return "", nil
	}
	return t.nodes[t.parent[pos]].ID, nil
}

func (t *Tree) Children(id string) ([]string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.ids(t.children[pos]), nil
}

func (t *Tree) Name(id string) (string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	return t.nodes[pos].Name, nil
}

func (t *Tree) Rank(id string) (string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	return t.nodes[pos].Rank, nil
}

func (t *Tree) Depth(id string) (int, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return int(t.depth[pos]), nil
}

// Lineage returns the ids from the root down to id, both inclusive.
func (t *Tree) Lineage(id string) ([]string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return t.ids(t.lineage(pos)), nil
}

func (t *Tree) lineage(pos uint32) []uint32 {
	out := make([]uint32, t.depth[pos]+1)
	cur := pos
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = cur
		cur = t.parent[cur]
	}
	return out
}

// RankLineage returns the ranks along Lineage(id).
func (t *Tree) RankLineage(id string) ([]string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	line := t.lineage(pos)
	out := make([]string, len(line))
	for i, p := range line {
		out[i] = t.nodes[p].Rank
	}
	return out, nil
}

// NameLineage returns the names along Lineage(id).
func (t *Tree) NameLineage(id string) ([]string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	line := t.lineage(pos)
	out := make([]string, len(line))
	for i, p := range line {
		out[i] = t.nodes[p].Name
	}
	return out, nil
}

// LineageAtRanks picks one lineage member per requested rank, in the order
// requested. The member closest to id wins when a rank repeats; ranks not
// on the lineage yield "".
func (t *Tree) LineageAtRanks(id string, ranks []string) ([]string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	found := map[string]string{}
	for cur := pos; cur != noParent; cur = t.parent[cur] {
		node := t.nodes[cur]
		if _, ok := found[node.Rank]; !ok {
			found[node.Rank] = node.ID
		}
	}
	out := make([]string, len(ranks))
	for i, rank := range ranks {
		out[i] = found[rank]
	}
	return out, nil
}

// ParentRank returns the closest lineage member of the given rank,
// starting at id itself, or "" when the lineage has none.
func (t *Tree) ParentRank(id string, rank string) (string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	for cur := pos; cur != noParent; cur = t.parent[cur] {
		if t.nodes[cur].Rank == rank {
			return t.nodes[cur].ID, nil
		}
	}
	return "", nil
}

// IsAncestor reports whether a is a strict ancestor of b. It walks at most
// depth(b)-depth(a) parent links.
func (t *Tree) IsAncestor(a string, b string) (bool, error) {
	pa, err := t.lookup(a)
	if err != nil {
		return false, err
	}
	pb, err := t.lookup(b)
	if err != nil {
		return false, err
	}
	if t.depth[pa] >= t.depth[pb] {
		return false, nil
	}
	cur := pb
	for steps := t.depth[pb] - t.depth[pa]; steps > 0; steps-- {
		cur = t.parent[cur]
	}
	return cur == pa, nil
}

// LowestCommonAncestor returns the deepest node shared by the lineages of
// a and b. When one is an ancestor of the other, that ancestor is returned.
func (t *Tree) LowestCommonAncestor(a string, b string) (string, error) {
	pa, err := t.lookup(a)
	if err != nil {
		return "", err
	}
	pb, err := t.lookup(b)
	if err != nil {
		return "", err
	}
	for t.depth[pa] > t.depth[pb] {
		pa = t.parent[pa]
	}
	for t.depth[pb] > t.depth[pa] {
		pb = t.parent[pb]
	}
	for pa != pb {
		pa = t.parent[pa]
		pb = t.parent[pb]
	}
	return t.nodes[pa].ID, nil
}

// SearchByName returns the ids whose name matches, in arena order.
//
// SearchExact is a map lookup. SearchPrefix binary-searches the sorted
// distinct names, O(log n + k). SearchExactFold compares case-insensitively
// and has to scan every distinct name.
func (t *Tree) SearchByName(name string, mode types.SearchMode) []string {
	var hits []*roaring.Bitmap
	switch mode {
	case types.SearchPrefix:
		start := lowerBound(t.sortedNames, name)
		for _, candidate := range t.sortedNames[start:] {
			if !strings.HasPrefix(candidate, name) {
				break
			}
			hits = append(hits, t.names[candidate])
		}
	case types.SearchExactFold:
		for _, candidate := range t.sortedNames {
			if strings.EqualFold(candidate, name) {
				hits = append(hits, t.names[candidate])
			}
		}
	default:
		if bm, ok := t.names[name]; ok {
			hits = append(hits, bm)
		}
	}
	if len(hits) == 0 {
		return nil
	}
	merged := roaring.FastOr(hits...)
	return t.ids(merged.ToArray())
}

func lowerBound(sorted []string, value string) int {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if sorted[mid] < value {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Leaves returns the leaves of the subtree rooted at id in depth-first
// order; a leaf returns itself.
func (t *Tree) Leaves(id string) ([]string, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	var out []string
	t.walkFrom(pos, func(cur uint32) bool {
		if len(t.children[cur]) == 0 {
			out = append(out, t.nodes[cur].ID)
		}
		return true
	})
	return out, nil
}

// Walk visits every node depth-first in preorder, children in their stable
// order. Returning false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(node types.Node, depth int) bool) {
	t.walkFrom(t.root, func(cur uint32) bool {
		return fn(t.nodes[cur], int(t.depth[cur]))
	})
}

func (t *Tree) walkFrom(start uint32, visit func(pos uint32) bool) {
	stack := []uint32{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(cur) {
			continue
		}
		kids := t.children[cur]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Records returns the depth-first record stream of the tree. Building a
// tree from it yields the same structure.
func (t *Tree) Records() []types.Record {
	out := make([]types.Record, 0, len(t.nodes))
	t.Walk(func(node types.Node, _ int) bool {
		out = append(out, node.Record())
		return true
	})
	return out
}

func (t *Tree) Stats() types.Stats {
	stats := types.Stats{
		Nodes: len(t.nodes),
		Ranks: map[string]int{},
	}
	for pos, node := range t.nodes {
		if len(t.children[pos]) == 0 {
			stats.Leaves++
		}
		if d := int(t.depth[pos]); d > stats.MaxDepth {
			stats.MaxDepth = d
		}
		stats.Ranks[node.Rank]++
	}
	return stats
}

func (t *Tree) ids(positions []uint32) []string {
	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = t.nodes[pos].ID
	}
	return out
}
