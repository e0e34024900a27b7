package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/youzi20/yz-cli/cmd/add"
	"github.com/youzi20/yz-cli/cmd/get"
	"github.com/youzi20/yz-cli/cmd/templates"
	"github.com/youzi20/yz-cli/cmd/version"
	"github.com/youzi20/yz-cli/internal/constants"
	"github.com/youzi20/yz-cli/internal/logger"
	yzruntime "github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/ui"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCommand()

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		ui.ErrorErr(err)
		os.Exit(exitCode(err))
	}
}

// exitCode propagates the exit status of a failed exec transport and
// maps every other error to 1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

func newRootCommand() *cobra.Command {
	rootLogger := createLogger()
	rootViper := createViper()
	runtimeContext := yzruntime.NewContext(rootLogger, rootViper)

	helpRunE := func(cmd *cobra.Command, args []string) error {
		err := cmd.Help()
		if err != nil {
			return fmt.Errorf("fail to show help: %w", err)
		}
		return nil
	}

	rootCmd := &cobra.Command{
		Use:               "yz",
		Short:             "yz template CLI",
		Long:              `Adds UI components and business modules from a shared template repository to the current project.`,
		DisableAutoGenTag: true,
		SilenceErrors:     true,
		SilenceUsage:      true,
		RunE:              helpRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := runtimeContext.Logger
			v := runtimeContext.Viper

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if verbose := v.GetBool(settings.Flags.Verbose.Name); verbose {
				newLogger := log.Level(zerolog.DebugLevel)
				runtimeContext.Logger = &newLogger
			}

			if isLoadSettings(cmd) {
				if err := runtimeContext.AttachSettings(); err != nil {
					return err
				}
				if err := runtimeContext.AttachComponents(); err != nil {
					return err
				}
			}

			return nil
		},
	}

	rootCmd.SetHelpTemplate(`
{{- with (or .Long .Short)}}{{.}}{{end}}

Usage:
{{- if .Runnable}}
  {{.UseLine}}
{{- else if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]
{{- end}}

{{- if .HasAvailableSubCommands}}

Available Commands:
  {{- range .Commands}}
    {{- if (and (not .Hidden) (.IsAvailableCommand))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
    {{- end}}
  {{- end}}
{{- end }}

{{- if .HasExample}}

Examples:
{{.Example}}
{{- end }}

{{- $local := (.LocalFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $local }}

Flags:
{{$local}}
{{- end }}

{{- $inherited := (.InheritedFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $inherited }}

Global Flags:
{{$inherited}}
{{- end }}

{{- if .HasAvailableSubCommands }}

Use "{{.CommandPath}} [command] --help" for more information about a command.
{{- end }}
`)

	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	templatesCmd := templates.New(runtimeContext)
	templatesCmd.RunE = helpRunE

	rootCmd.AddCommand(
		add.New(runtimeContext),
		get.New(runtimeContext),
		templatesCmd,
		version.New(runtimeContext),
	)

	return rootCmd
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringP(settings.Flags.CliEnvFile.Name, settings.Flags.CliEnvFile.Short, constants.DefaultEnvFileName,
		fmt.Sprintf("Path to %s file which contains GITHUB_TOKEN and YZ_* variables", constants.DefaultEnvFileName))
	fs.BoolP(settings.Flags.Verbose.Name, settings.Flags.Verbose.Short, false, "Log fetch and cache decisions")

	// empty defaults so that YZ_* variables and the config file can fill them
	for _, f := range []struct {
		flag  settings.Flag
		usage string
	}{
		{settings.Flags.ConfigFile, "Path to the config file (default ~/.yz/config.yaml)"},
		{settings.Flags.CacheDir, "Template cache directory (default <install dir>/../.cache/templates)"},
		{settings.Flags.Repository, fmt.Sprintf("Template repository as owner/repo[/sub/dir][#ref] (default %s)", constants.DefaultRepository)},
		{settings.Flags.Transport, fmt.Sprintf("How templates are fetched: tarball, git or exec (default %s)", constants.DefaultTransport)},
		{settings.Flags.ExecCommand, fmt.Sprintf("Command run by the exec transport (default %q)", constants.DefaultExecCommand)},
	} {
		fs.String(f.flag.Name, "", f.usage)
	}
}

func isLoadSettings(cmd *cobra.Command) bool {
	// these run without a repository, cache or config file
	excludedCommands := map[string]struct{}{
		"version":    {},
		"bash":       {},
		"fish":       {},
		"powershell": {},
		"zsh":        {},
		"help":       {},
		"yz":         {},
		"templates":  {},
	}

	_, exists := excludedCommands[cmd.Name()]
	return !exists
}

func createLogger() *zerolog.Logger {
	return logger.NewConsoleLogger()
}

func createViper() *viper.Viper {
	return viper.New() //nolint:forbidigo
}
