package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taxtree/internal/app"
	"taxtree/internal/core"
)

type deriveOptions struct {
	Tree   treeOptions
	Export exportOptions
}

func newExportCommand() *cobra.Command {
	opts := deriveOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole tree in another format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDerive(cmd.Context(), cmd, opts, func(_ context.Context, _ app.Service, tree *core.Tree) (*core.Tree, error) {
				return tree, nil
			})
		},
	}
	addTreeFlags(cmd, &opts.Tree)
	addExportFlags(cmd, &opts.Export)
	return cmd
}

func newSubtreeCommand() *cobra.Command {
	opts := deriveOptions{}
	cmd := &cobra.Command{
		Use:   "subtree ID",
		Short: "Write the subtree rooted at a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd.Context(), cmd, opts, func(ctx context.Context, service app.Service, tree *core.Tree) (*core.Tree, error) {
				return service.Subtree(ctx, tree, args[0])
			})
		},
	}
	addTreeFlags(cmd, &opts.Tree)
	addExportFlags(cmd, &opts.Export)
	return cmd
}

type pruneOptions struct {
	deriveOptions
	KeepIDs   []string
	KeepRanks []string
	KeepNames []string
}

func newPruneCommand() *cobra.Command {
	opts := pruneOptions{}
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Keep only matching nodes and their ancestors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDerive(cmd.Context(), cmd, opts.deriveOptions, func(ctx context.Context, service app.Service, tree *core.Tree) (*core.Tree, error) {
				return service.Prune(ctx, tree, app.PruneRequest{
					IDs:   opts.KeepIDs,
					Ranks: opts.KeepRanks,
					Names: opts.KeepNames,
				})
			})
		},
	}
	addTreeFlags(cmd, &opts.Tree)
	addExportFlags(cmd, &opts.Export)
	cmd.Flags().StringSliceVar(&opts.KeepIDs, "keep-id", nil, "Keep these node ids")
	cmd.Flags().StringSliceVar(&opts.KeepRanks, "keep-rank", nil, "Keep nodes of these ranks")
	cmd.Flags().StringSliceVar(&opts.KeepNames, "keep-name", nil, "Keep nodes with these names")
	return cmd
}

type deriveFunc func(ctx context.Context, service app.Service, tree *core.Tree) (*core.Tree, error)

func runDerive(ctx context.Context, cmd *cobra.Command, opts deriveOptions, derive deriveFunc) error {
	service := newAppService()
	loaded, err := loadTree(ctx, cmd, service, opts.Tree)
	if err != nil {
		return err
	}
	tree, err := derive(ctx, service, loaded.Tree)
	if err != nil {
		return err
	}
	result, err := service.Export(tree, exportRequest(cmd, opts.Export))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes (%s): %s\n", result.Records, result.Format, result.Path)
	return nil
}
