package constants

import "time"

const (
	// Logging Levels
	DefaultLogLevel = "info"

	// Default Values
	DefaultRepository  = "youzi20/yz-cli/templates"
	DefaultTransport   = "tarball"
	DefaultEnvFileName = ".env"
	DefaultExecCommand = "npx degit"

	// Directory names
	ConfigDirName   = ".yz"
	ConfigFileName  = "config.yaml"
	CacheDirName    = ".cache/templates"
	CacheMarkerFile = ".yz-complete"

	// Environment
	EnvPrefix         = "YZ"
	GitHubTokenEnvVar = "GITHUB_TOKEN"
	ForceUpdateEnvVar = "YZ_FORCE_UPDATE_CHECK"

	// Timeouts
	APITimeout     = 6 * time.Second
	TarballTimeout = 60 * time.Second
)
