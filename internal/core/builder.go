package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

// Builder turns a record stream into a validated Tree. A Builder holds no
// state between builds and can be reused.
type Builder struct {
	opts types.BuildOptions
}

func NewBuilder(opts types.BuildOptions) (Builder, error) {
	if err := ValidateOptions(opts); err != nil {
		return Builder{}, err
	}
	return Builder{opts: opts}, nil
}

// ValidateOptions rejects unknown or unset policies. Callers must choose
// both policies explicitly.
func ValidateOptions(opts types.BuildOptions) error {
	switch opts.OrphanPolicy {
	case types.OrphanReparent, types.OrphanExclude:
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown orphan policy: %q", opts.OrphanPolicy))
	}
	switch opts.DuplicatePolicy {
	case types.DuplicateFail, types.DuplicateOverwrite:
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown duplicate policy: %q", opts.DuplicatePolicy))
	}
	return nil
}

// Build drains the source and returns the finished tree together with the
// non-fatal diagnostics. On error the returned tree is nil.
//
// The root id is taken from the options when set and from the source
// otherwise.
func (b Builder) Build(ctx context.Context, source ports.RecordSource) (*Tree, types.Diagnostics, error) {
	if source == nil {
		return nil, types.Diagnostics{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("record source is required")
	}
	rootID := strings.TrimSpace(b.opts.RootID)
	if rootID == "" {
		rootID = strings.TrimSpace(source.RootID())
	}
	if rootID == "" {
		return nil, types.Diagnostics{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("root id is required")
	}

	table := NewNodeTable(b.opts.DuplicatePolicy)
	diag := types.Diagnostics{}
	err := source.Records(ctx, func(rec types.Record) error {
		if err := ctx.Err(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("build canceled").
				WithCause(err)
		}
		diag.Records++
		rec.ID = strings.TrimSpace(rec.ID)
		rec.ParentID = strings.TrimSpace(rec.ParentID)
		if rec.ID == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("record %d has an empty id", diag.Records))
		}
		if rec.ID == rootID {
			rec.ParentID = ""
		}
		overwritten, err := table.Insert(rec)
		if err != nil {
			return err
		}
		if overwritten {
			diag.Overwritten = append(diag.Overwritten, rec.ID)
		}
		return nil
	})
	if err != nil {
		return nil, types.Diagnostics{}, err
	}

	if !table.Contains(rootID) {
		if !b.opts.SynthesizeRoot {
			return nil, types.Diagnostics{}, &MissingRootError{RootID: rootID}
		}
		if _, err := table.Insert(types.Record{ID: rootID}); err != nil {
			return nil, types.Diagnostics{}, err
		}
		diag.SynthesizedRoot = true
	}

	excluded := b.resolveOrphans(table, rootID, &diag)
	if err := checkCycles(table, rootID, excluded); err != nil {
		return nil, types.Diagnostics{}, err
	}

	kept := make([]types.Node, 0, len(table.nodes)-len(diag.Orphans))
	for i, node := range table.nodes {
		if excluded[i] {
			continue
		}
		kept = append(kept, node)
	}
	tree, disconnected := assemble(ctx, kept, rootID)
	diag.Disconnected = disconnected

	logDiagnostics(ctx, rootID, tree, diag)
	return tree, diag, nil
}

// resolveOrphans applies the orphan policy to every non-root node whose
// parent is absent. The returned slice marks nodes dropped from the tree.
func (b Builder) resolveOrphans(table *NodeTable, rootID string, diag *types.Diagnostics) []bool {
	excluded := make([]bool, len(table.nodes))
	for i := range table.nodes {
		node := &table.nodes[i]
		if node.ID == rootID {
			continue
		}
		if node.ParentID != "" && table.Contains(node.ParentID) {
			continue
		}
		switch b.opts.OrphanPolicy {
		case types.OrphanReparent:
			node.ParentID = rootID
			diag.Reparented = append(diag.Reparented, node.ID)
		case types.OrphanExclude:
			excluded[i] = true
			diag.Orphans = append(diag.Orphans, node.ID)
		}
	}
	return excluded
}

// checkCycles follows the parent chain of every node. Chains end at the
// root, at an excluded orphan, or at a node already proven to end there.
func checkCycles(table *NodeTable, rootID string, excluded []bool) error {
	const (
		unseen uint8 = iota
		onPath
		settled
	)
	state := make([]uint8, len(table.nodes))
	var path []int
	for start := range table.nodes {
		if state[start] != unseen {
			continue
		}
		path = path[:0]
		cur := start
		for {
			if state[cur] == settled {
				break
			}
			if state[cur] == onPath {
				return &CyclicTaxonomyError{ID: table.nodes[cur].ID}
			}
			state[cur] = onPath
			path = append(path, cur)
			node := table.nodes[cur]
			if node.ID == rootID || excluded[cur] {
				break
			}
			cur = table.index[node.ParentID]
		}
		for _, pos := range path {
			state[pos] = settled
		}
	}
	return nil
}

func logDiagnostics(ctx context.Context, rootID string, tree *Tree, diag types.Diagnostics) {
	logger := log.Ctx(ctx)
	logger.Debug().
		Str("root", rootID).
		Int("records", diag.Records).
		Int("nodes", tree.Len()).
		Int("orphans", len(diag.Orphans)).
		Int("reparented", len(diag.Reparented)).
		Int("disconnected", len(diag.Disconnected)).
		Msg("taxonomy built")
	if diag.SynthesizedRoot {
		logger.Warn().Str("root", rootID).Msg("root node synthesized")
	}
	if len(diag.Overwritten) > 0 {
		logger.Warn().Int("count", len(diag.Overwritten)).Msg("duplicate records overwritten")
	}
	if len(diag.Orphans) > 0 {
		logger.Warn().Int("count", len(diag.Orphans)).Msg("orphan nodes excluded")
	}
	if len(diag.Reparented) > 0 {
		logger.Warn().Int("count", len(diag.Reparented)).Msg("orphan nodes reparented to root")
	}
	if len(diag.Disconnected) > 0 {
		logger.Warn().Int("count", len(diag.Disconnected)).Msg("nodes unreachable from root")
	}
}
