package app

import (
	"time"

	"taxtree/internal/adapters"
	"taxtree/internal/ports"
	"taxtree/internal/types"
)

type Service struct {
	Sources   ports.SourceOpenerPort
	Exporters map[types.ExportFormat]ports.TreeExportPort
	Reports   ports.ReportPort
	Fetcher   ports.FetchPort
	Clock     func() time.Time
}

func NewService() Service {
	return Service{
		Sources: adapters.NewSourceOpenerAdapter(),
		Exporters: map[types.ExportFormat]ports.TreeExportPort{
			types.ExportTSV:    adapters.NewTSVTreeWriter(),
			types.ExportYAML:   adapters.NewYAMLTreeWriter(),
			types.ExportSQLite: adapters.NewSQLiteTreeStore(),
		},
		Reports: adapters.NewReportFileAdapter(),
		Fetcher: adapters.NewHTTPFetchAdapter(),
		Clock:   time.Now,
	}
}
