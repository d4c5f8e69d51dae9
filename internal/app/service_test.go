package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxtree/internal/core"
	"taxtree/internal/ports"
	"taxtree/internal/types"
)

const lifeTSV = `# root=1
1		root	no rank
2	1	Bacteria	domain
3	1	Eukaryota	domain
10	2	Proteobacteria	phylum
11	10	Escherichia	genus
12	11	Escherichia coli	species
13	11	Escherichia albertii	species
20	3	Chordata	phylum
21	20	Homo	genus
22	21	Homo sapiens	species
23	3	Escherichia	genus
99	404	Lost	genus
`

func writeLife(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "life.tsv")
	require.NoError(t, os.WriteFile(path, []byte(lifeTSV), 0o644))
	return path
}

func testService() Service {
	service := NewService()
	service.Clock = func() time.Time {
		return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	}
	return service
}

func loadLife(t *testing.T, service Service) *core.Tree {
	t.Helper()
	result, err := service.LoadTree(t.Context(), TreeRequest{Provider: types.ProviderTSV, Input: writeLife(t)})
	require.NoError(t, err)
	return result.Tree
}

func nodeIDs(nodes []types.Node) []string {
	out := make([]string, len(nodes))
	for i, node := range nodes {
		out[i] = node.ID
	}
	return out
}

func TestLoadTreeWritesReport(t *testing.T) {
	service := testService()
	reportPath := filepath.Join(t.TempDir(), "report.yaml")
	result, err := service.LoadTree(t.Context(), TreeRequest{
		Provider:   types.ProviderTSV,
		Input:      writeLife(t),
		ReportPath: reportPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, result.Tree.Len())
	assert.Equal(t, []string{"99"}, result.Diagnostics.Orphans)
	assert.Equal(t, types.BuildOptions{
		RootID:          "1",
		OrphanPolicy:    types.OrphanExclude,
		DuplicatePolicy: types.DuplicateFail,
	}, result.Options)

	report, err := service.Inspect(InspectRequest{ReportPath: reportPath})
	require.NoError(t, err)
	assert.Equal(t, types.ProviderTSV, report.Provider)
	assert.Equal(t, "2026-03-04T05:06:07Z", report.CreatedAt)
	assert.Equal(t, result.Options, report.Options)
	assert.Equal(t, 11, report.Stats.Nodes)
	assert.Equal(t, []string{"99"}, report.Diagnostics.Orphans)
}

func TestLoadTreeExplicitOptionsWin(t *testing.T) {
	synthesize := false
	result, err := testService().LoadTree(t.Context(), TreeRequest{
		Provider:       types.ProviderTSV,
		Input:          writeLife(t),
		OrphanPolicy:   types.OrphanReparent,
		SynthesizeRoot: &synthesize,
	})
	require.NoError(t, err)
	assert.Equal(t, types.OrphanReparent, result.Options.OrphanPolicy)
	assert.Equal(t, []string{"99"}, result.Diagnostics.Reparented)
	assert.Equal(t, 12, result.Tree.Len())
}

func TestLoadTreeErrors(t *testing.T) {
	service := testService()
	tests := []struct {
		name string
		req  TreeRequest
		code errbuilder.ErrCode
	}{
		{"unknown provider", TreeRequest{Provider: "itis", Input: "x"}, errbuilder.CodeInvalidArgument},
		{"missing input", TreeRequest{Provider: types.ProviderTSV}, errbuilder.CodeInvalidArgument},
		{"bad policy", TreeRequest{Provider: types.ProviderTSV, Input: "x", OrphanPolicy: "drop"}, errbuilder.CodeInvalidArgument},
		{"missing file", TreeRequest{Provider: types.ProviderNCBI, Input: filepath.Join(t.TempDir(), "none")}, errbuilder.CodeNotFound},
		{"missing root", TreeRequest{Provider: types.ProviderTSV, Input: writeLife(t), RootID: "777"}, errbuilder.CodeFailedPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.LoadTree(t.Context(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, errbuilder.CodeOf(err))
		})
	}
}

func TestLineage(t *testing.T) {
	service := testService()
	tree := loadLife(t, service)

	result, err := service.Lineage(tree, LineageRequest{ID: "12"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "10", "11", "12"}, nodeIDs(result.Nodes))

	result, err = service.Lineage(tree, LineageRequest{ID: "12", Ranks: []string{"domain", "class", "species"}})
	require.NoError(t, err)
	want := []types.Node{
		{ID: "2", ParentID: "1", Name: "Bacteria", Rank: "domain"},
		{Rank: "class"},
		{ID: "12", ParentID: "11", Name: "Escherichia coli", Rank: "species"},
	}
	if diff := cmp.Diff(want, result.Nodes); diff != "" {
		t.Fatalf("unexpected lineage (-want +got):\n%s", diff)
	}

	_, err = service.Lineage(tree, LineageRequest{ID: "404"})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	_, err = service.Lineage(nil, LineageRequest{ID: "1"})
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestLCA(t *testing.T) {
	service := testService()
	tree := loadLife(t, service)
	tests := []struct {
		ids   []string
		want  string
		depth int
	}{
		{[]string{"12", "13"}, "11", 3},
		{[]string{"12", "13", "10"}, "10", 2},
		{[]string{"12", "22"}, "1", 0},
		{[]string{"22"}, "22", 4},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.ids, ","), func(t *testing.T) {
			result, err := service.LCA(tree, LCARequest{IDs: tt.ids})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Node.ID)
			assert.Equal(t, tt.depth, result.Depth)
		})
	}
	_, err := service.LCA(tree, LCARequest{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = service.LCA(tree, LCARequest{IDs: []string{"404", "1"}})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestSearch(t *testing.T) {
	service := testService()
	tree := loadLife(t, service)

	result, err := service.Search(tree, SearchRequest{Name: "Escherichia"})
	require.NoError(t, err)
	assert.Equal(t, []string{"11", "23"}, nodeIDs(result.Nodes))

	result, err = service.Search(tree, SearchRequest{Name: "escherichia ", Mode: types.SearchPrefix})
	require.NoError(t, err)
	assert.Empty(t, result.Nodes)

	result, err = service.Search(tree, SearchRequest{Name: "Escherichia", Mode: types.SearchPrefix, Rank: "species"})
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "13"}, nodeIDs(result.Nodes))

	_, err = service.Search(tree, SearchRequest{Name: "x", Mode: "regex"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = service.Search(tree, SearchRequest{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestSubtreeAndPrune(t *testing.T) {
	service := testService()
	tree := loadLife(t, service)

	sub, err := service.Subtree(t.Context(), tree, "3")
	require.NoError(t, err)
	assert.Equal(t, "3", sub.Root())
	assert.Equal(t, 5, sub.Len())

	pruned, err := service.Prune(t.Context(), tree, PruneRequest{Ranks: []string{"phylum"}, Names: []string{"Homo sapiens"}})
	require.NoError(t, err)
	for _, id := range []string{"1", "2", "3", "10", "20", "21", "22"} {
		assert.True(t, pruned.Contains(id), id)
	}
	assert.Equal(t, 7, pruned.Len())

	pruned, err = service.Prune(t.Context(), tree, PruneRequest{IDs: []string{"13"}})
	require.NoError(t, err)
	assert.Equal(t, 5, pruned.Len())

	_, err = service.Prune(t.Context(), tree, PruneRequest{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = service.Prune(t.Context(), tree, PruneRequest{IDs: []string{"404"}})
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestExportRoundTrip(t *testing.T) {
	service := testService()
	tree := loadLife(t, service)
	dir := t.TempDir()

	for _, format := range []types.ExportFormat{types.ExportTSV, types.ExportSQLite} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "tree."+string(format))
			exported, err := service.Export(tree, ExportRequest{Format: format, Path: path})
			require.NoError(t, err)
			assert.Equal(t, tree.Len(), exported.Records)

			provider := types.ProviderTSV
			if format == types.ExportSQLite {
				provider = types.ProviderSQLite
			}
			reloaded, err := service.LoadTree(t.Context(), TreeRequest{Provider: provider, Input: path})
			require.NoError(t, err)
			assert.True(t, reloaded.Diagnostics.Clean())
			if diff := cmp.Diff(tree.Records(), reloaded.Tree.Records()); diff != "" {
				t.Fatalf("round trip changed the tree (-want +got):\n%s", diff)
			}
		})
	}

	_, err := service.Export(tree, ExportRequest{Format: "csv", Path: filepath.Join(dir, "x")})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = service.Export(tree, ExportRequest{Format: types.ExportYAML})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestStats(t *testing.T) {
	service := testService()
	result, err := service.Stats(loadLife(t, service))
	require.NoError(t, err)
	assert.Equal(t, 11, result.Stats.Nodes)
	want := []RankCount{
		{Rank: "genus", Count: 3},
		{Rank: "species", Count: 3},
		{Rank: "domain", Count: 2},
		{Rank: "phylum", Count: 2},
		{Rank: "no rank", Count: 1},
	}
	if diff := cmp.Diff(want, result.Ranks); diff != "" {
		t.Fatalf("unexpected rank counts (-want +got):\n%s", diff)
	}
}

type recordingFetcher struct {
	got ports.FetchRequest
}

func (f *recordingFetcher) Fetch(_ context.Context, request ports.FetchRequest) ([]string, error) {
	f.got = request
	var out []string
	for _, url := range request.URLs {
		out = append(out, filepath.Join(request.Dir, filepath.Base(url)))
	}
	return out, nil
}

func TestFetch(t *testing.T) {
	fetcher := &recordingFetcher{}
	service := testService()
	service.Fetcher = fetcher

	result, err := service.Fetch(t.Context(), FetchRequest{Provider: types.ProviderGTDB, Dir: "dl", Retries: 5})
	require.NoError(t, err)
	assert.Equal(t, "dl/bac120_taxonomy.tsv.gz,dl/ar53_taxonomy.tsv.gz", result.Input)
	assert.True(t, fetcher.got.SkipExisting)
	assert.Equal(t, 5, fetcher.got.Retries)

	_, err = service.Fetch(t.Context(), FetchRequest{Provider: types.ProviderNCBI, Dir: "dl", Force: true})
	require.NoError(t, err)
	assert.False(t, fetcher.got.SkipExisting)

	_, err = service.Fetch(t.Context(), FetchRequest{Provider: types.ProviderTSV, Dir: "dl"})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	_, err = service.Fetch(t.Context(), FetchRequest{Provider: types.ProviderNCBI})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestProviders(t *testing.T) {
	assert.Len(t, testService().Providers(), 5)
}
