package core

import (
	"context"

	"github.com/RoaringBitmap/roaring"
	"github.com/rs/zerolog/log"

	"taxtree/internal/types"
)

// FilterSubtree returns a new tree holding id and all of its descendants,
// with id as the root. The result shares no state with t.
func (t *Tree) FilterSubtree(ctx context.Context, id string) (*Tree, error) {
	pos, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	members := roaring.New()
	t.walkFrom(pos, func(cur uint32) bool {
		members.Add(cur)
		return true
	})
	nodes := t.copyMembers(members)
	for i := range nodes {
		if nodes[i].ID == id {
			nodes[i].ParentID = ""
			break
		}
	}
	sub, _ := assemble(ctx, nodes, id)
	log.Ctx(ctx).Debug().Str("root", id).Int("nodes", sub.Len()).Msg("subtree extracted")
	return sub, nil
}

// Prune returns a new tree with the nodes accepted by keep plus all of
// their ancestors. The root is always retained, so the result stays a
// single connected tree.
func (t *Tree) Prune(ctx context.Context, keep func(types.Node) bool) *Tree {
	members := roaring.New()
	members.Add(t.root)
	for i, node := range t.nodes {
		if !keep(node) {
			continue
		}
		for cur := uint32(i); !members.Contains(cur); cur = t.parent[cur] {
			members.Add(cur)
		}
	}
	pruned, _ := assemble(ctx, t.copyMembers(members), t.Root())
	log.Ctx(ctx).Debug().Int("before", t.Len()).Int("after", pruned.Len()).Msg("tree pruned")
	return pruned
}

// copyMembers copies the selected nodes in arena order, which keeps the
// sibling order of the source tree.
func (t *Tree) copyMembers(members *roaring.Bitmap) []types.Node {
	nodes := make([]types.Node, 0, members.GetCardinality())
	it := members.Iterator()
	for it.HasNext() {
		nodes = append(nodes, t.nodes[it.Next()])
	}
	return nodes
}
