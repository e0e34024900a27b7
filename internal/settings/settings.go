package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/youzi20/yz-cli/internal/constants"
	"github.com/youzi20/yz-cli/internal/templateconfig"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/validation"
)

const loadEnvErrorMessage = "Not able to load configuration from .env file, skipping this optional step.\n" +
	"yz reads GITHUB_TOKEN and YZ_* variables from the environment (they MUST be exported).\n" +
	"If .env location is not provided via CLI flag, yz looks for a .env file in the current working directory and its parents."

// Settings is the resolved configuration for one invocation.
// Precedence: flag > YZ_* environment variable > config file > default.
type Settings struct {
	Repository  string
	Transport   string
	ExecCommand string
	CacheDir    string
	Exclude     []string
	Token       string
	ConfigPath  string
	Config      *templateconfig.Config
}

// New loads the optional .env file and the config file, then resolves
// every setting through viper.
func New(logger *zerolog.Logger, v *viper.Viper) (*Settings, error) {
	envPath := v.GetString(Flags.CliEnvFile.Name)

	// try to load the .env file (GITHUB_TOKEN and friends)
	if err := LoadEnv(envPath); err != nil {
		// .env file is optional, so we log it as a debug message
		logger.Debug().Err(err).Msg(loadEnvErrorMessage)
	}

	if err := BindEnv(v); err != nil {
		return nil, err
	}

	configPath := v.GetString(Flags.ConfigFile.Name)
	if configPath == "" {
		p, err := templateconfig.DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	cfg, err := templateconfig.Load(logger, configPath)
	if err != nil {
		return nil, err
	}

	if err := applyDefaults(v, cfg); err != nil {
		return nil, err
	}

	s := &Settings{
		Repository:  strings.TrimRight(strings.TrimSpace(v.GetString(Flags.Repository.Name)), "/"),
		Transport:   strings.ToLower(strings.TrimSpace(v.GetString(Flags.Transport.Name))),
		ExecCommand: v.GetString(Flags.ExecCommand.Name),
		CacheDir:    v.GetString(Flags.CacheDir.Name),
		Exclude:     cfg.Exclude,
		Token:       v.GetString(GitHubTokenKey),
		ConfigPath:  configPath,
		Config:      cfg,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().Msgf("Repository: %s, transport: %s, cache: %s", s.Repository, s.Transport, s.CacheDir)
	return s, nil
}

// Validate checks the resolved settings.
func (s *Settings) Validate() error {
	validator, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}
	if err := validator.Var(s.Repository, "repo_path"); err != nil {
		return fmt.Errorf("invalid repository %q: %w", s.Repository, err)
	}
	if err := validator.Var(s.Transport, "oneof=tarball git exec"); err != nil {
		return fmt.Errorf("invalid transport %q, expected one of: tarball, git, exec", s.Transport)
	}
	return nil
}

// BindEnv maps YZ_<FLAG> environment variables onto viper keys, plus the
// GitHub token which is also read from the conventional GITHUB_TOKEN.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := v.BindEnv(GitHubTokenKey, constants.EnvPrefix+"_GITHUB_TOKEN", constants.GitHubTokenEnvVar); err != nil {
		return fmt.Errorf("failed to bind environment variable: %s", constants.GitHubTokenEnvVar)
	}

	v.AutomaticEnv() // Ensure variables are picked up
	return nil
}

func applyDefaults(v *viper.Viper, cfg *templateconfig.Config) error {
	v.SetDefault(Flags.Repository.Name, firstNonEmpty(cfg.Repository, constants.DefaultRepository))
	v.SetDefault(Flags.Transport.Name, firstNonEmpty(cfg.Transport, constants.DefaultTransport))
	v.SetDefault(Flags.ExecCommand.Name, firstNonEmpty(cfg.ExecCommand, constants.DefaultExecCommand))

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		root, err := templaterepo.DefaultCacheRoot()
		if err != nil {
			return err
		}
		cacheDir = root
	}
	v.SetDefault(Flags.CacheDir.Name, cacheDir)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, s := range values {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func LoadEnv(envPath string) error {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading file from %s: %w", envPath, err)
			}
			return nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("error getting working directory: %w", err)
	}

	foundEnvPath, err := findEnvFile(cwd, constants.DefaultEnvFileName)
	if err != nil {
		return fmt.Errorf("error loading environment: %w", err)
	}

	if err := godotenv.Load(foundEnvPath); err != nil {
		return fmt.Errorf("error loading file from %s: %w", foundEnvPath, err)
	}
	return nil
}

func findEnvFile(startDir, fileName string) (string, error) {
	dir := startDir

	for {
		filePath := filepath.Join(dir, fileName)

		if info, err := os.Stat(filePath); err == nil && !info.IsDir() {
			return filePath, nil
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break // Reached the root directory.
		}
		dir = parentDir
	}
	return "", fmt.Errorf("file %s not found in any parent directory starting from %s", fileName, startDir)
}
