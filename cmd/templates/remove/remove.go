package remove

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templateconfig"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/ui"
)

type handler struct {
	log      *zerolog.Logger
	settings *settings.Settings
	cache    *templaterepo.Cache
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>...",
		Short:   "Removes extra template categories",
		Long:    `Removes one or more categories from ~/.yz/config.yaml and drops their cached templates. The built-in ui and module categories cannot be removed.`,
		Args:    cobra.MinimumNArgs(1),
		Example: "yz templates remove hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)
			return h.Execute(args)
		},
	}
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:      ctx.Logger,
		settings: ctx.Settings,
		cache:    ctx.Cache,
	}
}

func (h *handler) Execute(keys []string) error {
	cfg := h.settings.Config

	var removed []templateconfig.CategoryConfig
	for _, key := range keys {
		entry, err := cfg.RemoveCategory(key)
		if errors.Is(err, templateconfig.ErrCategoryNotConfigured) {
			ui.Warning(fmt.Sprintf("Category %s is not configured, skipping", key))
			continue
		}
		if err != nil {
			return err
		}
		removed = append(removed, entry)
	}

	if len(removed) == 0 {
		return nil
	}

	if err := templateconfig.Save(h.settings.ConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	for _, entry := range removed {
		if err := h.cache.Clear(entry.Descriptor()); err != nil {
			h.log.Debug().Err(err).Msgf("Could not clear cache for %s", entry.Key)
		}
	}

	ui.Line()
	for _, entry := range removed {
		ui.Success(fmt.Sprintf("Removed category %s", entry.Key))
	}
	ui.Line()
	if len(cfg.Categories) > 0 {
		ui.Dim("Remaining extra categories:")
		for _, c := range cfg.Categories {
			ui.Print(fmt.Sprintf("  - %s (%s)", c.Key, c.Remote))
		}
	} else {
		ui.Dim("Only the built-in categories are configured")
	}
	ui.Line()

	return nil
}
