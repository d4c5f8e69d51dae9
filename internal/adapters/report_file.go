package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"taxtree/internal/ports"
	"taxtree/internal/types"
)

type ReportFileAdapter struct{}

func NewReportFileAdapter() ReportFileAdapter {
	return ReportFileAdapter{}
}

func (ReportFileAdapter) WriteReport(path string, report types.BuildReport) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode build report").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return writeError(path, err)
	}
	return nil
}

func (ReportFileAdapter) ReadReport(path string) (types.BuildReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BuildReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("build report not found").
			WithCause(err)
	}
	var report types.BuildReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return types.BuildReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid build report format").
			WithCause(err)
	}
	if report.Stats.Ranks == nil {
		report.Stats.Ranks = map[string]int{}
	}
	return report, nil
}

var _ ports.ReportPort = ReportFileAdapter{}
