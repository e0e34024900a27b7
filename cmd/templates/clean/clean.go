package clean

import (
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
	Category         string
	SkipConfirmation bool
}

type handler struct {
	log      *zerolog.Logger
	registry *category.Registry
	cache    *templaterepo.Cache
	prompter ui.Prompter
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [category]",
		Short: "Removes cached templates",
		Long: `Removes the cached templates of one category, or the whole template cache
when no category is given. The next yz add fetches them again.`,
		Args:    cobra.MaximumNArgs(1),
		Example: "yz templates clean ui\nyz templates clean --yes",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)
			return h.Execute(h.ResolveInputs(args, runtimeContext.Viper))
		},
	}

	cmd.Flags().BoolP(settings.Flags.SkipConfirmation.Name, settings.Flags.SkipConfirmation.Short, false, "Remove the whole cache without asking")

	return cmd
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:      ctx.Logger,
		registry: ctx.Registry,
		cache:    ctx.Cache,
		prompter: ctx.Prompter,
	}
}

func (h *handler) ResolveInputs(args []string, v *viper.Viper) Inputs {
	inputs := Inputs{SkipConfirmation: v.GetBool(settings.Flags.SkipConfirmation.Name)}
	if len(args) > 0 {
		inputs.Category = args[0]
	}
	return inputs
}

func (h *handler) Execute(inputs Inputs) error {
	if inputs.Category != "" {
		desc, err := h.registry.Lookup(inputs.Category)
		if err != nil {
			return err
		}
		if !h.cache.Has(desc) {
			ui.Dim(fmt.Sprintf("Nothing cached for %s", desc.Label))
			return nil
		}
		if err := h.cache.Clear(desc); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Removed cached %s templates", desc.Label))
		return nil
	}

	if !inputs.SkipConfirmation {
		ok, err := h.prompter.Confirm(
			fmt.Sprintf("Remove every cached template under %s?", h.cache.Root()),
			ui.WithLabels("Remove", "Cancel"),
		)
		if err != nil {
			return err
		}
		if !ok {
			ui.Dim("Cache left untouched")
			return nil
		}
	}

	if err := h.cache.ClearAll(); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Removed template cache %s", h.cache.Root()))
	return nil
}
