package types

type OrphanPolicy string

const (
	OrphanReparent OrphanPolicy = "reparent-to-root"
	OrphanExclude  OrphanPolicy = "exclude-and-report"
)

type DuplicatePolicy string

const (
	DuplicateFail      DuplicatePolicy = "fail"
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

type SearchMode string

const (
	SearchExact     SearchMode = "exact"
	SearchPrefix    SearchMode = "prefix"
	SearchExactFold SearchMode = "exact-fold"
)

type ProviderKind string

const (
	ProviderNCBI ProviderKind = "ncbi"
	ProviderGTDB ProviderKind = "gtdb"
	ProviderTSV  ProviderKind = "tsv"
	ProviderSFGA ProviderKind = "sfga"
	// ProviderSQLite reads trees previously exported with the sqlite format.
	ProviderSQLite ProviderKind = "sqlite"
)

type ExportFormat string

const (
	ExportTSV    ExportFormat = "tsv"
	ExportYAML   ExportFormat = "yaml"
	ExportSQLite ExportFormat = "sqlite"
)
