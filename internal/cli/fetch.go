package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taxtree/internal/app"
	"taxtree/internal/types"
)

type fetchOptions struct {
	Provider     string
	URLs         []string
	Dir          string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
	Force        bool
}

func newFetchCommand() *cobra.Command {
	opts := fetchOptions{}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download provider taxonomy files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Provider: ncbi or gtdb")
	cmd.Flags().StringSliceVar(&opts.URLs, "url", nil, "Download these URLs instead of the provider defaults")
	cmd.Flags().StringVar(&opts.Dir, "dir", "data", "Download directory")
	cmd.Flags().IntVar(&opts.TimeoutSec, "http-timeout", 0, "HTTP timeout in seconds")
	cmd.Flags().IntVar(&opts.Retries, "http-retries", 0, "HTTP attempts per file")
	cmd.Flags().IntVar(&opts.RetryDelayMs, "http-retry-delay-ms", 0, "Base delay between attempts")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Download even when the file already exists")

	_ = viper.BindPFlag("provider", cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("fetch_dir", cmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))
	return cmd
}

func runFetch(ctx context.Context, cmd *cobra.Command, opts fetchOptions) error {
	service := newAppService()
	provider := resolveString(cmd, opts.Provider, "provider", "provider")
	result, err := service.Fetch(ctx, app.FetchRequest{
		Provider:     types.ProviderKind(provider),
		URLs:         opts.URLs,
		Dir:          resolveString(cmd, opts.Dir, "fetch_dir", "dir"),
		TimeoutSec:   resolveInt(cmd, opts.TimeoutSec, "http_timeout_sec", "http-timeout"),
		Retries:      resolveInt(cmd, opts.Retries, "http_retries", "http-retries"),
		RetryDelayMs: resolveInt(cmd, opts.RetryDelayMs, "http_retry_delay_ms", "http-retry-delay-ms"),
		Force:        opts.Force,
	})
	if err != nil {
		return err
	}
	for _, path := range result.Paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	fmt.Fprint(cmd.ErrOrStderr(), pterm.Info.Sprintf("build with: taxtree build --provider %s --input %s\n", provider, result.Input))
	return nil
}
