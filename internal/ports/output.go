package ports

import "taxtree/internal/types"

// TreeExportPort writes a tree given as its depth-first record stream.
type TreeExportPort interface {
	Export(path string, rootID string, records []types.Record) error
}

type ReportPort interface {
	WriteReport(path string, report types.BuildReport) error
	ReadReport(path string) (types.BuildReport, error)
}
