package app

import (
	"taxtree/internal/core"
	"taxtree/internal/types"
)

// TreeRequest selects a provider input and the build options. Empty
// policies and a nil SynthesizeRoot fall back to the provider profile.
type TreeRequest struct {
	Provider        types.ProviderKind
	Input           string
	RootID          string
	OrphanPolicy    types.OrphanPolicy
	DuplicatePolicy types.DuplicatePolicy
	SynthesizeRoot  *bool
	ReportPath      string
}

type TreeResult struct {
	Tree        *core.Tree
	Profile     types.ProviderProfile
	Options     types.BuildOptions
	Diagnostics types.Diagnostics
	Stats       types.Stats
	ReportPath  string
}

type LineageRequest struct {
	ID string
	// Ranks restricts the lineage to one entry per rank, in the given
	// order. Ranks missing from the lineage yield a node with only Rank set.
	Ranks []string
}

type LineageResult struct {
	Nodes []types.Node
}

type LCARequest struct {
	IDs []string
}

type LCAResult struct {
	Node  types.Node
	Depth int
}

type SearchRequest struct {
	Name string
	Mode types.SearchMode
	Rank string
}

type SearchResult struct {
	Nodes []types.Node
}

type PruneRequest struct {
	IDs   []string
	Ranks []string
	Names []string
}

type ExportRequest struct {
	Format types.ExportFormat
	Path   string
}

type ExportResult struct {
	Path    string
	Format  types.ExportFormat
	Records int
}

type RankCount struct {
	Rank  string
	Count int
}

type StatsResult struct {
	Stats types.Stats
	Ranks []RankCount
}

type FetchRequest struct {
	Provider     types.ProviderKind
	URLs         []string
	Dir          string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
	Force        bool
}

type FetchResult struct {
	Paths []string
	// Input is the value to pass as the build input for the provider.
	Input string
}

type InspectRequest struct {
	ReportPath string
}
