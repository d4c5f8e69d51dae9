package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers with their root and suggested build options",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, profile := range newAppService().Providers() {
				fmt.Fprintf(out, "%s\t%s\n", profile.Kind, profile.Description)
				if profile.RootID != "" {
					fmt.Fprintf(out, "  root: %s\n", profile.RootID)
				}
				fmt.Fprintf(out, "  orphan policy: %s\n", profile.Options.OrphanPolicy)
				fmt.Fprintf(out, "  duplicate policy: %s\n", profile.Options.DuplicatePolicy)
				fmt.Fprintf(out, "  synthesize root: %t\n", profile.Options.SynthesizeRoot)
				if len(profile.URLs) > 0 {
					fmt.Fprintf(out, "  urls: %s\n", strings.Join(profile.URLs, ", "))
				}
			}
			return nil
		},
	}
}
