package core

import (
	"taxtree/internal/types"
)

// NodeTable is the append-only store used while a tree is being built.
// Nodes keep the position of their first insertion, which gives the
// stable child order of the finished tree.
type NodeTable struct {
	policy types.DuplicatePolicy
	nodes  []types.Node
	index  map[string]int
}

func NewNodeTable(policy types.DuplicatePolicy) *NodeTable {
	return &NodeTable{
		policy: policy,
		index:  map[string]int{},
	}
}

// Insert adds the record as a node. Under the overwrite policy a repeated
// identifier replaces the earlier node in place and overwritten is true.
func (t *NodeTable) Insert(rec types.Record) (bool, error) {
	if pos, ok := t.index[rec.ID]; ok {
		if t.policy != types.DuplicateOverwrite {
			return false, &DuplicateNodeError{ID: rec.ID}
		}
		t.nodes[pos] = types.Node(rec)
		return true, nil
	}
	t.index[rec.ID] = len(t.nodes)
	t.nodes = append(t.nodes, types.Node(rec))
	return false, nil
}

func (t *NodeTable) Get(id string) (types.Node, error) {
	pos, ok := t.index[id]
	if !ok {
		return types.Node{}, &UnknownNodeError{ID: id}
	}
	return t.nodes[pos], nil
}

func (t *NodeTable) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

func (t *NodeTable) Len() int {
	return len(t.nodes)
}
