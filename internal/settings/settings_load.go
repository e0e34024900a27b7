package settings

type Flag struct {
	Name  string
	Short string
}

type flagNames struct {
	Verbose          Flag
	CliEnvFile       Flag
	ConfigFile       Flag
	CacheDir         Flag
	Repository       Flag
	Transport        Flag
	ExecCommand      Flag
	Refresh          Flag
	Check            Flag
	Label            Flag
	SkipConfirmation Flag
}

var Flags = flagNames{
	Verbose:          Flag{"verbose", "v"},
	CliEnvFile:       Flag{"env", "e"},
	ConfigFile:       Flag{"config", ""},
	CacheDir:         Flag{"cache-dir", ""},
	Repository:       Flag{"repo", ""},
	Transport:        Flag{"transport", ""},
	ExecCommand:      Flag{"exec-command", ""},
	Refresh:          Flag{"refresh", ""},
	Check:            Flag{"check", ""},
	Label:            Flag{"label", "l"},
	SkipConfirmation: Flag{"yes", "y"},
}

// Viper keys that are not flags.
const (
	GitHubTokenKey = "github-token"
)
