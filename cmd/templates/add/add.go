package add

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templateconfig"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/ui"
	"github.com/youzi20/yz-cli/internal/validation"
)

type Inputs struct {
	Key         string `validate:"required,category_key" cli:"key"`
	Remote      string `validate:"required,repo_path" cli:"remote"`
	Destination string `validate:"required,relative_dir" cli:"destination"`
	Label       string
}

type handler struct {
	log       *zerolog.Logger
	settings  *settings.Settings
	cache     *templaterepo.Cache
	validated bool
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <key> <owner/repo/sub/dir[#ref]> <destination>",
		Short: "Registers an extra template category",
		Long: `Adds a template category to ~/.yz/config.yaml. Its templates are the
subdirectories of the remote path and are copied into the destination
directory, relative to the project root.`,
		Args:    cobra.ExactArgs(3),
		Example: "yz templates add hook myorg/templates/hooks src/hooks --label \"React hook\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)

			inputs := h.ResolveInputs(args, runtimeContext.Viper)
			if err := h.ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(inputs)
		},
	}

	cmd.Flags().StringP(settings.Flags.Label.Name, settings.Flags.Label.Short, "", "Human readable name shown in prompts")

	return cmd
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:      ctx.Logger,
		settings: ctx.Settings,
		cache:    ctx.Cache,
	}
}

func (h *handler) ResolveInputs(args []string, v *viper.Viper) Inputs {
	return Inputs{
		Key:         args[0],
		Remote:      args[1],
		Destination: args[2],
		Label:       v.GetString(settings.Flags.Label.Name),
	}
}

func (h *handler) ValidateInputs(inputs Inputs) error {
	validator, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	if err := validator.Struct(inputs); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}

	h.validated = true
	return nil
}

func (h *handler) Execute(inputs Inputs) error {
	if !h.validated {
		return fmt.Errorf("handler inputs not validated")
	}

	entry := templateconfig.CategoryConfig{
		Key:         inputs.Key,
		Label:       inputs.Label,
		Remote:      inputs.Remote,
		Destination: inputs.Destination,
	}

	cfg := h.settings.Config
	if err := cfg.AddCategory(entry); err != nil {
		return err
	}
	if err := templateconfig.Save(h.settings.ConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	// A previous category may have left an entry under the same cache directory.
	if err := h.cache.Clear(entry.Descriptor()); err != nil {
		h.log.Debug().Err(err).Msg("Could not invalidate cache entry")
	}

	ui.Line()
	ui.Success(fmt.Sprintf("Added category %s", entry.Key))
	ui.Dim(fmt.Sprintf("  %s -> %s", entry.Remote, entry.Destination))
	ui.Line()
	ui.Dim("Browse it with:")
	ui.Command(fmt.Sprintf("  yz templates list %s", entry.Key))
	ui.Line()

	return nil
}
