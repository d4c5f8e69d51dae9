package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taxtree/internal/types"
)

func sampleRecords() []types.Record {
	return []types.Record{
		{ID: "1", ParentID: "", Name: "root", Rank: "no rank"},
		{ID: "2", ParentID: "1", Name: "A", Rank: "phylum"},
		{ID: "3", ParentID: "1", Name: "B", Rank: "phylum"},
		{ID: "4", ParentID: "2", Name: "A1", Rank: "class"},
	}
}

func strictOptions() types.BuildOptions {
	return types.BuildOptions{
		OrphanPolicy:    types.OrphanExclude,
		DuplicatePolicy: types.DuplicateFail,
	}
}

func buildTree(t *testing.T, root string, records []types.Record, opts types.BuildOptions) (*Tree, types.Diagnostics) {
	t.Helper()
	builder, err := NewBuilder(opts)
	require.NoError(t, err)
	tree, diag, err := builder.Build(t.Context(), NewStaticSource(root, records))
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree, diag
}
