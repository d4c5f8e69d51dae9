package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taxtree/internal/app"
	"taxtree/internal/types"
)

type treeOptions struct {
	Provider        string
	Input           string
	RootID          string
	OrphanPolicy    string
	DuplicatePolicy string
	SynthesizeRoot  bool
	Report          string
}

// addTreeFlags registers the flags every command that loads a tree shares.
func addTreeFlags(cmd *cobra.Command, opts *treeOptions) {
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Provider: ncbi, gtdb, tsv, sfga, sqlite")
	cmd.Flags().StringVar(&opts.Input, "input", "", "Provider input (file, directory or comma separated files)")
	cmd.Flags().StringVar(&opts.RootID, "root-id", "", "Root identifier (defaults to the provider root)")
	cmd.Flags().StringVar(&opts.OrphanPolicy, "orphan-policy", "", "Orphan policy: reparent-to-root or exclude-and-report")
	cmd.Flags().StringVar(&opts.DuplicatePolicy, "duplicate-policy", "", "Duplicate policy: fail or overwrite")
	cmd.Flags().BoolVar(&opts.SynthesizeRoot, "synthesize-root", false, "Create a placeholder root when it is missing")
	cmd.Flags().StringVar(&opts.Report, "report", "", "Write the build report to this path")

	_ = viper.BindPFlag("provider", cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("root_id", cmd.Flags().Lookup("root-id"))
	_ = viper.BindPFlag("orphan_policy", cmd.Flags().Lookup("orphan-policy"))
	_ = viper.BindPFlag("duplicate_policy", cmd.Flags().Lookup("duplicate-policy"))
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
}

func treeRequest(cmd *cobra.Command, opts treeOptions) app.TreeRequest {
	return app.TreeRequest{
		Provider:        types.ProviderKind(resolveString(cmd, opts.Provider, "provider", "provider")),
		Input:           resolveString(cmd, opts.Input, "input", "input"),
		RootID:          resolveString(cmd, opts.RootID, "root_id", "root-id"),
		OrphanPolicy:    types.OrphanPolicy(resolveString(cmd, opts.OrphanPolicy, "orphan_policy", "orphan-policy")),
		DuplicatePolicy: types.DuplicatePolicy(resolveString(cmd, opts.DuplicatePolicy, "duplicate_policy", "duplicate-policy")),
		SynthesizeRoot:  resolveOptionalBool(cmd, opts.SynthesizeRoot, "synthesize_root", "synthesize-root"),
		ReportPath:      resolveString(cmd, opts.Report, "report", "report"),
	}
}

func loadTree(ctx context.Context, cmd *cobra.Command, service app.Service, opts treeOptions) (app.TreeResult, error) {
	result, err := service.LoadTree(ctx, treeRequest(cmd, opts))
	if err != nil {
		return app.TreeResult{}, err
	}
	if !result.Diagnostics.Clean() {
		printDiagnostics(cmd.ErrOrStderr(), result.Diagnostics)
	}
	return result, nil
}

func printDiagnostics(w io.Writer, diag types.Diagnostics) {
	fmt.Fprintf(w, "diagnostics: orphans=%d reparented=%d disconnected=%d overwritten=%d synthesized_root=%t\n",
		len(diag.Orphans), len(diag.Reparented), len(diag.Disconnected), len(diag.Overwritten), diag.SynthesizedRoot)
}

type exportOptions struct {
	Output string
	Format string
}

func addExportFlags(cmd *cobra.Command, opts *exportOptions) {
	cmd.Flags().StringVar(&opts.Output, "output", "", "Output path")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.ExportTSV), "Export format: tsv, yaml, sqlite")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
}

func exportRequest(cmd *cobra.Command, opts exportOptions) app.ExportRequest {
	return app.ExportRequest{
		Format: types.ExportFormat(resolveString(cmd, opts.Format, "format", "format")),
		Path:   resolveString(cmd, opts.Output, "output", "output"),
	}
}
