package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"taxtree/internal/types"
)

func (s Service) Inspect(req InspectRequest) (types.BuildReport, error) {
	path := strings.TrimSpace(req.ReportPath)
	if path == "" {
		return types.BuildReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is required")
	}
	return s.Reports.ReadReport(path)
}
