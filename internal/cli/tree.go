package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"taxtree/internal/core"
)

type treeRenderOptions struct {
	Tree     treeOptions
	MaxDepth int
}

func newTreeCommand() *cobra.Command {
	opts := treeRenderOptions{}
	cmd := &cobra.Command{
		Use:   "tree [ID]",
		Short: "Render the tree, or the subtree below ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := ""
			if len(args) == 1 {
				start = args[0]
			}
			return runTree(cmd.Context(), cmd, opts, start)
		},
	}
	addTreeFlags(cmd, &opts.Tree)
	cmd.Flags().IntVar(&opts.MaxDepth, "depth", 3, "Levels to render below the start node (0 for all)")
	return cmd
}

func runTree(ctx context.Context, cmd *cobra.Command, opts treeRenderOptions, start string) error {
	service := newAppService()
	loaded, err := loadTree(ctx, cmd, service, opts.Tree)
	if err != nil {
		return err
	}
	if start == "" {
		start = loaded.Tree.Root()
	}
	node, err := renderNode(loaded.Tree, start, opts.MaxDepth, 0)
	if err != nil {
		return err
	}
	out, err := pterm.DefaultTree.WithRoot(pterm.TreeNode{Children: []pterm.TreeNode{node}}).Srender()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func renderNode(tree *core.Tree, id string, maxDepth int, level int) (pterm.TreeNode, error) {
	node, err := tree.Get(id)
	if err != nil {
		return pterm.TreeNode{}, err
	}
	children, err := tree.Children(id)
	if err != nil {
		return pterm.TreeNode{}, err
	}
	text := fmt.Sprintf("%s %s [%s]", node.ID, node.Name, node.Rank)
	if maxDepth > 0 && level >= maxDepth {
		if len(children) > 0 {
			text += fmt.Sprintf(" (+%d)", len(children))
		}
		return pterm.TreeNode{Text: text}, nil
	}
	out := pterm.TreeNode{Text: text}
	for _, child := range children {
		rendered, err := renderNode(tree, child, maxDepth, level+1)
		if err != nil {
			return pterm.TreeNode{}, err
		}
		out.Children = append(out.Children, rendered)
	}
	return out, nil
}
