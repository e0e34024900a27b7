package templates

import (
	"github.com/spf13/cobra"

	"github.com/youzi20/yz-cli/cmd/templates/add"
	"github.com/youzi20/yz-cli/cmd/templates/clean"
	"github.com/youzi20/yz-cli/cmd/templates/list"
	"github.com/youzi20/yz-cli/cmd/templates/remove"
	"github.com/youzi20/yz-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Manages template categories and the local template cache",
		Long: `Manages the template categories yz knows about and the local cache of
fetched templates.

yz ships with the ui and module categories. Use these commands to inspect
the cache, drop stale entries, or register extra categories in ~/.yz/config.yaml.

To add a template to your project, use: yz add`,
	}

	templatesCmd.AddCommand(list.New(runtimeContext))
	templatesCmd.AddCommand(clean.New(runtimeContext))
	templatesCmd.AddCommand(add.New(runtimeContext))
	templatesCmd.AddCommand(remove.New(runtimeContext))

	return templatesCmd
}
