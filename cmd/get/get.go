package get

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/youzi20/yz-cli/internal/logger"
	"github.com/youzi20/yz-cli/internal/materialize"
	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/ui"
)

type Inputs struct {
	Argument string
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "get <category>/<name>",
		Short: "Fetch one template straight into the current project",
		Long: `Fetches a single template from the template repository into the
category's destination directory, without using the local cache.

The destination must not exist yet.`,
		Example: "yz get ui/Button\nyz get module/Task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument <category>/<name>, got %d\n\nUsage:\n  %s", len(args), cmd.UseLine())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)
			return h.Execute(cmd.Context(), Inputs{Argument: args[0]})
		},
	}
}

type handler struct {
	log          *zerolog.Logger
	resolver     *templaterepo.Resolver
	fetcher      templaterepo.Fetcher
	materializer *materialize.Materializer
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:          ctx.Logger,
		resolver:     ctx.Resolver,
		fetcher:      ctx.Fetcher,
		materializer: ctx.Materializer,
	}
}

func (h *handler) Execute(ctx context.Context, inputs Inputs) error {
	key, name, err := templaterepo.ParseArgument(inputs.Argument)
	if err != nil {
		return err
	}

	direct, err := h.resolver.ResolveDirect(key, name)
	if err != nil {
		return err
	}
	h.log.Debug().Object("template", logger.Fields{
		"category":    direct.Category.Key,
		"remote":      direct.RemotePath,
		"destination": direct.Destination,
	}).Msgf("Resolved %s", inputs.Argument)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("unable to get working directory: %w", err)
	}

	dest, err := ui.WithSpinnerResult(fmt.Sprintf("Fetching %s...", direct.RemotePath), func() (string, error) {
		return h.materializer.FetchInto(ctx, h.fetcher, direct.Remote, cwd, direct.Category.DestinationDir, direct.Name)
	})
	if err != nil {
		return err
	}

	ui.Success(fmt.Sprintf("Added %s: %s to %s", direct.Category.Label, direct.Name, dest))
	return nil
}
