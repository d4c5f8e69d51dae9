package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taxtree/internal/app"
	"taxtree/internal/types"
)

func printNodes(w io.Writer, nodes []types.Node) {
	for _, node := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", node.ID, node.Rank, node.Name)
	}
}

type lineageOptions struct {
	Tree  treeOptions
	Ranks []string
}

func newLineageCommand() *cobra.Command {
	opts := lineageOptions{}
	cmd := &cobra.Command{
		Use:   "lineage ID",
		Short: "Print the path from the root to a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineage(cmd.Context(), cmd, opts, args[0])
		},
	}
	addTreeFlags(cmd, &opts.Tree)
	cmd.Flags().StringSliceVar(&opts.Ranks, "ranks", nil, "Only print these ranks, in this order")
	return cmd
}

func runLineage(ctx context.Context, cmd *cobra.Command, opts lineageOptions, id string) error {
	service := newAppService()
	loaded, err := loadTree(ctx, cmd, service, opts.Tree)
	if err != nil {
		return err
	}
	result, err := service.Lineage(loaded.Tree, app.LineageRequest{ID: id, Ranks: opts.Ranks})
	if err != nil {
		return err
	}
	printNodes(cmd.OutOrStdout(), result.Nodes)
	return nil
}

func newLCACommand() *cobra.Command {
	opts := treeOptions{}
	cmd := &cobra.Command{
		Use:   "lca ID ID [ID...]",
		Short: "Print the lowest common ancestor of two or more nodes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLCA(cmd.Context(), cmd, opts, args)
		},
	}
	addTreeFlags(cmd, &opts)
	return cmd
}

func runLCA(ctx context.Context, cmd *cobra.Command, opts treeOptions, ids []string) error {
	service := newAppService()
	loaded, err := loadTree(ctx, cmd, service, opts)
	if err != nil {
		return err
	}
	result, err := service.LCA(loaded.Tree, app.LCARequest{IDs: ids})
	if err != nil {
		return err
	}
	printNodes(cmd.OutOrStdout(), []types.Node{result.Node})
	return nil
}

type searchOptions struct {
	Tree treeOptions
	Mode string
	Rank string
}

func newSearchCommand() *cobra.Command {
	opts := searchOptions{}
	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "Find nodes by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd, opts, args[0])
		},
	}
	addTreeFlags(cmd, &opts.Tree)
	cmd.Flags().StringVar(&opts.Mode, "mode", string(types.SearchExact), "Match mode: exact, prefix, exact-fold")
	cmd.Flags().StringVar(&opts.Rank, "rank", "", "Only return nodes of this rank")
	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, opts searchOptions, name string) error {
	service := newAppService()
	loaded, err := loadTree(ctx, cmd, service, opts.Tree)
	if err != nil {
		return err
	}
	result, err := service.Search(loaded.Tree, app.SearchRequest{
		Name: name,
		Mode: types.SearchMode(opts.Mode),
		Rank: opts.Rank,
	})
	if err != nil {
		return err
	}
	printNodes(cmd.OutOrStdout(), result.Nodes)
	return nil
}
