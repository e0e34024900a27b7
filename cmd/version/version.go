package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/ui"
	"github.com/youzi20/yz-cli/internal/update"
)

// Default placeholder value
var Version = "development"

func New(runtimeContext *runtime.Context, opts ...update.Option) *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the yz version",
		Long:  "This command prints the current version of yz. With --check it also looks up the latest release.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "yz", Version)

			check, err := cmd.Flags().GetBool(settings.Flags.Check.Name)
			if err != nil || !check {
				return err
			}

			checker := update.NewChecker(runtimeContext.Logger, opts...)
			res, err := checker.Check(cmd.Context(), Version)
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}

			if res.UpToDate {
				ui.Success(fmt.Sprintf("yz %s is up to date", res.Current))
				return nil
			}
			ui.Warning(fmt.Sprintf("Update available! You're running %s, but %s is the latest.", res.Current, res.Latest))
			ui.Dim(fmt.Sprintf("Visit %s to upgrade.", update.ReleasesURL))
			return nil
		},
	}

	versionCmd.Flags().Bool(settings.Flags.Check.Name, false, "Check GitHub for a newer release")

	return versionCmd
}
