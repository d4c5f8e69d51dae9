package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	opts := treeOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a tree from a provider input and report statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}
	addTreeFlags(cmd, &opts)
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts treeOptions) error {
	service := newAppService()
	spinner, _ := pterm.DefaultSpinner.WithWriter(cmd.ErrOrStderr()).Start("Building tree...")
	result, err := loadTree(ctx, cmd, service, opts)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Build failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("Built tree rooted at %s", result.Tree.Root()))
	}
	stats, err := service.Stats(result.Tree)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "root: %s\n", result.Tree.Root())
	fmt.Fprintf(out, "nodes: %d\n", stats.Stats.Nodes)
	fmt.Fprintf(out, "leaves: %d\n", stats.Stats.Leaves)
	fmt.Fprintf(out, "max depth: %d\n", stats.Stats.MaxDepth)
	fmt.Fprintf(out, "orphan policy: %s\n", result.Options.OrphanPolicy)
	fmt.Fprintf(out, "duplicate policy: %s\n", result.Options.DuplicatePolicy)
	for _, rank := range stats.Ranks {
		fmt.Fprintf(out, "rank %s: %d\n", rank.Rank, rank.Count)
	}
	if result.ReportPath != "" {
		fmt.Fprintf(out, "report: %s\n", result.ReportPath)
	}
	return nil
}
