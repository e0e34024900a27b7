package add

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/youzi20/yz-cli/internal/category"
	"github.com/youzi20/yz-cli/internal/materialize"
	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/ui"
)

type Inputs struct {
	Refresh bool
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Interactively add a template to the current project",
		Long: `Prompts for a template category, then for one of its templates, and copies
the chosen template into the category's destination directory.

Templates are fetched once per category and served from the local cache
afterwards. Use --refresh to fetch them again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)

			inputs := h.ResolveInputs(runtimeContext.Viper)
			return h.Execute(cmd.Context(), inputs)
		},
	}

	addCmd.Flags().Bool(settings.Flags.Refresh.Name, false, "Fetch the category's templates again before listing them")

	return addCmd
}

type handler struct {
	log          *zerolog.Logger
	registry     *category.Registry
	resolver     *templaterepo.Resolver
	materializer *materialize.Materializer
	prompter     ui.Prompter
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:          ctx.Logger,
		registry:     ctx.Registry,
		resolver:     ctx.Resolver,
		materializer: ctx.Materializer,
		prompter:     ctx.Prompter,
	}
}

func (h *handler) ResolveInputs(v *viper.Viper) Inputs {
	return Inputs{
		Refresh: v.GetBool(settings.Flags.Refresh.Name),
	}
}

func (h *handler) Execute(ctx context.Context, inputs Inputs) error {
	descs := h.registry.All()
	options := make([]ui.SelectOption[string], 0, len(descs))
	for _, d := range descs {
		options = append(options, ui.SelectOption[string]{
			Label: fmt.Sprintf("%s (%s)", d.Label, d.Key),
			Value: d.Key,
		})
	}

	key, err := h.prompter.Select("What do you want to add?", options)
	if err != nil {
		return err
	}
	desc, err := h.registry.Lookup(key)
	if err != nil {
		return err
	}

	if inputs.Refresh {
		err := ui.WithSpinner(fmt.Sprintf("Refreshing %s templates...", desc.Label), func() error {
			return h.resolver.Refresh(ctx, desc)
		})
		if err != nil {
			return err
		}
	}

	names, err := ui.WithSpinnerResult(fmt.Sprintf("Loading %s templates...", desc.Label), func() ([]string, error) {
		return h.resolver.Candidates(ctx, desc)
	})
	if err != nil {
		return err
	}

	nameOptions := make([]ui.SelectOption[string], 0, len(names))
	for _, n := range names {
		nameOptions = append(nameOptions, ui.SelectOption[string]{Label: n, Value: n})
	}
	name, err := h.prompter.Select(fmt.Sprintf("Pick a %s", desc.Label), nameOptions)
	if err != nil {
		return err
	}

	src, err := h.resolver.TemplateDir(desc, name)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("unable to get working directory: %w", err)
	}

	dest, err := h.materializer.CopyLocal(src, cwd, desc.DestinationDir, name)
	if err != nil {
		return err
	}

	ui.Success(fmt.Sprintf("Added %s: %s to %s", desc.Label, name, dest))
	return nil
}
