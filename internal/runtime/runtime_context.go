package runtime

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/youzi20/yz-cli/internal/category"
	"github.com/youzi20/yz-cli/internal/materialize"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/ui"
)

// Context holds everything a command needs. Settings and the components
// built from them are attached in the root command's pre-run.
type Context struct {
	Logger       *zerolog.Logger
	Viper        *viper.Viper
	Settings     *settings.Settings
	Registry     *category.Registry
	Fetcher      templaterepo.Fetcher
	Cache        *templaterepo.Cache
	Resolver     *templaterepo.Resolver
	Materializer *materialize.Materializer
	Prompter     ui.Prompter
}

func NewContext(logger *zerolog.Logger, viper *viper.Viper) *Context {
	return &Context{
		Logger:   logger,
		Viper:    viper,
		Prompter: ui.TerminalPrompter{},
	}
}

func (ctx *Context) AttachSettings() error {
	var err error

	ctx.Settings, err = settings.New(ctx.Logger, ctx.Viper)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	return nil
}

// AttachComponents builds the registry, fetcher, cache, resolver and
// materializer from the attached settings. A Fetcher set beforehand is kept.
func (ctx *Context) AttachComponents() error {
	if ctx.Settings == nil {
		return fmt.Errorf("settings are not loaded")
	}
	s := ctx.Settings

	registry, err := category.NewRegistry(s.Config.Descriptors(s.Repository)...)
	if err != nil {
		return fmt.Errorf("failed to build category registry: %w", err)
	}
	ctx.Registry = registry

	if ctx.Fetcher == nil {
		ctx.Fetcher, err = templaterepo.NewFetcher(ctx.Logger, s.Transport, templaterepo.FetcherOptions{
			Token:       s.Token,
			Exclude:     s.Exclude,
			ExecCommand: s.ExecCommand,
		})
		if err != nil {
			return err
		}
	}

	// the exec transport's subprocess inherits stderr
	ui.SetSpinnerEnabled(s.Transport != templaterepo.TransportExec)

	ctx.Cache = templaterepo.NewCache(ctx.Logger, s.CacheDir, ctx.Fetcher)
	ctx.Resolver = templaterepo.NewResolver(ctx.Logger, ctx.Registry, ctx.Cache)
	ctx.Materializer = materialize.New(ctx.Logger)
	return nil
}
