package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"taxtree/internal/core"
	"taxtree/internal/types"
)

func requireTree(tree *core.Tree) error {
	if tree == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no tree loaded")
	}
	return nil
}

func (s Service) Lineage(tree *core.Tree, req LineageRequest) (LineageResult, error) {
	if err := requireTree(tree); err != nil {
		return LineageResult{}, err
	}
	id := strings.TrimSpace(req.ID)
	var ids []string
	var err error
	if len(req.Ranks) > 0 {
		ids, err = tree.LineageAtRanks(id, req.Ranks)
	} else {
		ids, err = tree.Lineage(id)
	}
	if err != nil {
		return LineageResult{}, err
	}
	nodes := make([]types.Node, len(ids))
	for i, nodeID := range ids {
		if nodeID == "" {
			nodes[i] = types.Node{Rank: req.Ranks[i]}
			continue
		}
		if nodes[i], err = tree.Get(nodeID); err != nil {
			return LineageResult{}, err
		}
	}
	return LineageResult{Nodes: nodes}, nil
}

// LCA folds LowestCommonAncestor over every requested id.
func (s Service) LCA(tree *core.Tree, req LCARequest) (LCAResult, error) {
	if err := requireTree(tree); err != nil {
		return LCAResult{}, err
	}
	if len(req.IDs) == 0 {
		return LCAResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one id is required")
	}
	acc := strings.TrimSpace(req.IDs[0])
	if !tree.Contains(acc) {
		return LCAResult{}, &core.UnknownNodeError{ID: acc}
	}
	for _, id := range req.IDs[1:] {
		next, err := tree.LowestCommonAncestor(acc, strings.TrimSpace(id))
		if err != nil {
			return LCAResult{}, err
		}
		acc = next
	}
	node, err := tree.Get(acc)
	if err != nil {
		return LCAResult{}, err
	}
	depth, err := tree.Depth(acc)
	if err != nil {
		return LCAResult{}, err
	}
	return LCAResult{Node: node, Depth: depth}, nil
}

func (s Service) Search(tree *core.Tree, req SearchRequest) (SearchResult, error) {
	if err := requireTree(tree); err != nil {
		return SearchResult{}, err
	}
	mode := req.Mode
	if mode == "" {
		mode = types.SearchExact
	}
	switch mode {
	case types.SearchExact, types.SearchPrefix, types.SearchExactFold:
	default:
		return SearchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown search mode: %s", mode))
	}
	if req.Name == "" {
		return SearchResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("search name is required")
	}
	var nodes []types.Node
	for _, id := range tree.SearchByName(req.Name, mode) {
		node, err := tree.Get(id)
		if err != nil {
			return SearchResult{}, err
		}
		if req.Rank != "" && node.Rank != req.Rank {
			continue
		}
		nodes = append(nodes, node)
	}
	return SearchResult{Nodes: nodes}, nil
}

func (s Service) Subtree(ctx context.Context, tree *core.Tree, id string) (*core.Tree, error) {
	if err := requireTree(tree); err != nil {
		return nil, err
	}
	return tree.FilterSubtree(ctx, strings.TrimSpace(id))
}

// Prune keeps the nodes matching any of the requested ids, ranks or names
// together with all their ancestors.
func (s Service) Prune(ctx context.Context, tree *core.Tree, req PruneRequest) (*core.Tree, error) {
	if err := requireTree(tree); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 && len(req.Ranks) == 0 && len(req.Names) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("prune needs at least one id, rank or name to keep")
	}
	for _, id := range req.IDs {
		if !tree.Contains(id) {
			return nil, &core.UnknownNodeError{ID: id}
		}
	}
	ids := toSet(req.IDs)
	ranks := toSet(req.Ranks)
	names := toSet(req.Names)
	return tree.Prune(ctx, func(node types.Node) bool {
		_, byID := ids[node.ID]
		_, byRank := ranks[node.Rank]
		_, byName := names[node.Name]
		return byID || byRank || byName
	}), nil
}

func (s Service) Export(tree *core.Tree, req ExportRequest) (ExportResult, error) {
	if err := requireTree(tree); err != nil {
		return ExportResult{}, err
	}
	exporter, ok := s.Exporters[req.Format]
	if !ok {
		return ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported export format: %s", req.Format))
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		return ExportResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("export path is required")
	}
	records := tree.Records()
	if err := exporter.Export(path, tree.Root(), records); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Path: path, Format: req.Format, Records: len(records)}, nil
}

// Stats returns the tree statistics with ranks ordered by descending count.
func (s Service) Stats(tree *core.Tree) (StatsResult, error) {
	if err := requireTree(tree); err != nil {
		return StatsResult{}, err
	}
	stats := tree.Stats()
	ranks := make([]RankCount, 0, len(stats.Ranks))
	for rank, count := range stats.Ranks {
		ranks = append(ranks, RankCount{Rank: rank, Count: count})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Count != ranks[j].Count {
			return ranks[i].Count > ranks[j].Count
		}
		return ranks[i].Rank < ranks[j].Rank
	})
	return StatsResult{Stats: stats, Ranks: ranks}, nil
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}
