package list

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/youzi20/yz-cli/internal/category"
	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/ui"
)

type Inputs struct {
	Category string
	Refresh  bool
}

type handler struct {
	log      *zerolog.Logger
	registry *category.Registry
	resolver *templaterepo.Resolver
	cache    *templaterepo.Cache
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "Lists template categories or the templates of one category",
		Long: `Without arguments, shows every configured category and whether it is cached.
With a category, lists its templates, fetching them into the cache if needed.`,
		Args:    cobra.MaximumNArgs(1),
		Example: "yz templates list\nyz templates list ui --refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)
			inputs := h.ResolveInputs(args, runtimeContext.Viper)
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().Bool(settings.Flags.Refresh.Name, false, "Bypass cache and fetch fresh data")

	return cmd
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:      ctx.Logger,
		registry: ctx.Registry,
		resolver: ctx.Resolver,
		cache:    ctx.Cache,
	}
}

func (h *handler) ResolveInputs(args []string, v *viper.Viper) Inputs {
	inputs := Inputs{Refresh: v.GetBool(settings.Flags.Refresh.Name)}
	if len(args) > 0 {
		inputs.Category = args[0]
	}
	return inputs
}

func (h *handler) Execute(ctx context.Context, inputs Inputs) error {
	if inputs.Category == "" {
		return h.listCategories(ctx, inputs.Refresh)
	}

	desc, err := h.registry.Lookup(inputs.Category)
	if err != nil {
		return err
	}

	if inputs.Refresh {
		if err := ui.WithSpinner(fmt.Sprintf("Refreshing %s templates...", desc.Label), func() error {
			return h.resolver.Refresh(ctx, desc)
		}); err != nil {
			return err
		}
	}

	names, err := ui.WithSpinnerResult(fmt.Sprintf("Loading %s templates...", desc.Label), func() ([]string, error) {
		return h.resolver.Candidates(ctx, desc)
	})
	if err != nil {
		return err
	}

	ui.Line()
	ui.Title(fmt.Sprintf("Available %s templates", desc.Label))
	ui.Line()
	for _, n := range names {
		ui.Print("  " + n)
	}
	ui.Line()
	ui.Dim("Add one with:")
	ui.Command(fmt.Sprintf("  yz get %s/<name>", desc.Key))
	ui.Line()

	return nil
}

func (h *handler) listCategories(ctx context.Context, refresh bool) error {
	descs := h.registry.All()

	if refresh {
		for _, d := range descs {
			if err := ui.WithSpinner(fmt.Sprintf("Refreshing %s templates...", d.Label), func() error {
				return h.resolver.Refresh(ctx, d)
			}); err != nil {
				return err
			}
		}
	}

	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		rows = append(rows, []string{d.Key, d.Label, d.RemotePath, d.DestinationDir, h.cacheState(d)})
	}

	ui.Line()
	ui.Table([]string{"Key", "Label", "Remote", "Destination", "Cached"}, rows)
	ui.Line()
	ui.Dim(fmt.Sprintf("Cache: %s", h.cache.Root()))
	ui.Line()

	return nil
}

func (h *handler) cacheState(d category.Descriptor) string {
	if !h.cache.Has(d) {
		return "no"
	}
	marker, err := h.cache.Info(d)
	if err != nil {
		h.log.Debug().Err(err).Msgf("Could not read cache marker for %s", d.Key)
		return "yes"
	}
	return marker.FetchedAt.Local().Format("2006-01-02 15:04")
}
