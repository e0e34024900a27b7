package templateconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/youzi20/yz-cli/internal/category"
	"github.com/youzi20/yz-cli/internal/constants"
	"github.com/youzi20/yz-cli/internal/validation"
)

var (
	// ErrCategoryExists is returned when adding a category key that is already taken.
	ErrCategoryExists = errors.New("category already exists")
	// ErrCategoryNotConfigured is returned when removing a key that is not in the file.
	ErrCategoryNotConfigured = errors.New("category is not configured")
)

// Config represents the user configuration file at ~/.yz/config.yaml.
// Every field is optional; flags and YZ_* environment variables override it.
type Config struct {
	Repository  string           `yaml:"repository,omitempty" validate:"omitempty,repo_path" cli:"repository"`
	Transport   string           `yaml:"transport,omitempty" validate:"omitempty,oneof=tarball git exec" cli:"transport"`
	ExecCommand string           `yaml:"execCommand,omitempty"`
	CacheDir    string           `yaml:"cacheDir,omitempty"`
	Exclude     []string         `yaml:"exclude,omitempty"`
	Categories  []CategoryConfig `yaml:"categories,omitempty" validate:"dive"`
}

// CategoryConfig is an extra template category on top of the built-in ones.
type CategoryConfig struct {
	Key         string `yaml:"key" validate:"required,category_key" cli:"key"`
	Label       string `yaml:"label,omitempty"`
	Remote      string `yaml:"remote" validate:"required,repo_path" cli:"remote"`
	Destination string `yaml:"destination" validate:"required,relative_dir" cli:"destination"`
}

// Descriptor converts the entry to a registry descriptor.
func (c CategoryConfig) Descriptor() category.Descriptor {
	return category.Descriptor{
		Key:            c.Key,
		Label:          c.Label,
		RemotePath:     c.Remote,
		DestinationDir: c.Destination,
	}
}

// DefaultPath returns ~/.yz/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.ConfigDirName, constants.ConfigFileName), nil
}

// Load reads the config file at path. A missing file yields an empty config.
func Load(logger *zerolog.Logger, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Msg("No config file found at " + path)
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	logger.Debug().Msgf("Loaded config from %s (%d extra categories)", path, len(cfg.Categories))
	return &cfg, nil
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Validate checks the config with the yz validators.
func (c *Config) Validate() error {
	v, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}

// Descriptors returns the built-in categories rooted at repo followed by the
// configured extras, in file order.
func (c *Config) Descriptors(repo string) []category.Descriptor {
	descs := category.Default(repo)
	for _, cc := range c.Categories {
		descs = append(descs, cc.Descriptor())
	}
	return descs
}

// AddCategory appends cc. Keys must not clash with built-in or configured ones.
func (c *Config) AddCategory(cc CategoryConfig) error {
	cc.Key = strings.TrimSpace(cc.Key)
	if cc.Key == category.KeyUI || cc.Key == category.KeyModule {
		return fmt.Errorf("%w: %q is a built-in category", ErrCategoryExists, cc.Key)
	}
	for _, existing := range c.Categories {
		if existing.Key == cc.Key {
			return fmt.Errorf("%w: %q", ErrCategoryExists, cc.Key)
		}
	}

	candidate := *c
	candidate.Categories = append(append([]CategoryConfig{}, c.Categories...), cc)
	if err := candidate.Validate(); err != nil {
		return err
	}
	c.Categories = candidate.Categories
	return nil
}

// RemoveCategory drops the configured category with key and returns it.
func (c *Config) RemoveCategory(key string) (CategoryConfig, error) {
	for i, existing := range c.Categories {
		if existing.Key == key {
			c.Categories = append(c.Categories[:i], c.Categories[i+1:]...)
			return existing, nil
		}
	}
	return CategoryConfig{}, fmt.Errorf("%w: %q", ErrCategoryNotConfigured, key)
}
