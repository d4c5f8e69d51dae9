package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taxtree/internal/app"
)

type inspectOptions struct {
	Report string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a build report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Report, "report", "", "Build report path")
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	report, err := service.Inspect(app.InspectRequest{
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "provider: %s\n", report.Provider)
	fmt.Fprintf(out, "input: %s\n", report.Input)
	fmt.Fprintf(out, "created: %s\n", report.CreatedAt)
	fmt.Fprintf(out, "root: %s\n", report.Options.RootID)
	fmt.Fprintf(out, "policies: orphans=%s duplicates=%s synthesize_root=%t\n",
		report.Options.OrphanPolicy, report.Options.DuplicatePolicy, report.Options.SynthesizeRoot)
	fmt.Fprintf(out, "records: %d\n", report.Diagnostics.Records)
	fmt.Fprintf(out, "nodes: %d leaves: %d max depth: %d\n", report.Stats.Nodes, report.Stats.Leaves, report.Stats.MaxDepth)
	printDiagnostics(out, report.Diagnostics)
	ranks := make([]string, 0, len(report.Stats.Ranks))
	for rank := range report.Stats.Ranks {
		ranks = append(ranks, rank)
	}
	sort.Strings(ranks)
	for _, rank := range ranks {
		fmt.Fprintf(out, "rank %s: %d\n", rank, report.Stats.Ranks[rank])
	}
	return nil
}
