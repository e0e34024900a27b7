package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/constants"
)

const (
	githubAPIURL  = "https://api.github.com/repos/youzi20/yz-cli/releases/latest"
	ReleasesURL   = "https://github.com/youzi20/yz-cli/releases"
	timeout       = 2 * time.Second
	cacheDuration = 24 * time.Hour
	cacheFileName = "update.json"
)

// githubRelease is a minimal struct to parse the JSON response
// from the GitHub releases API.
type githubRelease struct {
	TagName string `json:"tag_name"`
}

// cacheState stores the data for our update check cache.
type cacheState struct {
	LatestVersion string    `json:"latest_version"`
	LastCheck     time.Time `json:"last_check"`
}

// Result is the outcome of a release check.
type Result struct {
	Current   *semver.Version
	Latest    *semver.Version
	UpToDate  bool
	FromCache bool
}

// Checker compares the running version with the latest GitHub release.
type Checker struct {
	logger     *zerolog.Logger
	httpClient *http.Client
	apiURL     string
	cachePath  string
	force      bool
	now        func() time.Time
}

type Option func(*Checker)

func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) {
		ch.httpClient = c
	}
}

func WithAPIURL(u string) Option {
	return func(ch *Checker) {
		ch.apiURL = u
	}
}

// WithCachePath overrides ~/.yz/update.json.
func WithCachePath(p string) Option {
	return func(ch *Checker) {
		ch.cachePath = p
	}
}

// WithForce skips the cached answer and checks development builds too.
func WithForce(force bool) Option {
	return func(ch *Checker) {
		ch.force = force
	}
}

func NewChecker(logger *zerolog.Logger, opts ...Option) *Checker {
	ch := &Checker{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     githubAPIURL,
		force:      os.Getenv(constants.ForceUpdateEnvVar) == "1",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ch)
	}
	if ch.cachePath == "" {
		if p, err := defaultCachePath(); err == nil {
			ch.cachePath = p
		} else {
			logger.Debug().Msgf("Failed to get cache path: %v", err)
		}
	}
	return ch
}

func defaultCachePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, constants.ConfigDirName, cacheFileName), nil
}

// ParseVersion accepts "v1.2.3", "1.2.3" or "version v1.2.3".
func ParseVersion(v string) (*semver.Version, error) {
	cleaned := strings.TrimSpace(strings.Replace(v, "version", "", 1))
	return semver.NewVersion(cleaned)
}

// Check resolves the latest release, from the cache when it is younger than
// a day, and compares it with currentVersion.
func (c *Checker) Check(ctx context.Context, currentVersion string) (*Result, error) {
	if currentVersion == "development" && !c.force {
		return nil, fmt.Errorf("current version is 'development', skipping update check (set %s=1 to override)", constants.ForceUpdateEnvVar)
	}

	current, err := ParseVersion(currentVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current version %q: %w", currentVersion, err)
	}

	cache := c.loadCache()
	now := c.now()
	latestString := cache.LatestVersion
	fromCache := true

	if c.force || latestString == "" || now.Sub(cache.LastCheck) > cacheDuration {
		c.logger.Debug().Msg("Cache expired or empty. Fetching from GitHub.")
		latestString, err = c.fetchLatest(ctx)
		if err != nil {
			return nil, err
		}
		fromCache = false
		if err := c.saveCache(cacheState{LatestVersion: latestString, LastCheck: now}); err != nil {
			c.logger.Debug().Msgf("Failed to save cache: %v", err)
		}
	} else {
		c.logger.Debug().Msgf("Using cached latest version: %s", latestString)
	}

	latest, err := semver.NewVersion(latestString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest tag %q: %w", latestString, err)
	}

	return &Result{
		Current:   current,
		Latest:    latest,
		UpToDate:  !latest.GreaterThan(current),
		FromCache: fromCache,
	}, nil
}

func (c *Checker) loadCache() cacheState {
	if c.cachePath == "" {
		return cacheState{}
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug().Msgf("Failed to load cache: %v", err)
		}
		return cacheState{}
	}

	var state cacheState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.Debug().Msgf("Cache file corrupted, ignoring: %v", err)
		return cacheState{}
	}
	return state
}

func (c *Checker) saveCache(state cacheState) error {
	if c.cachePath == "" {
		return errors.New("no cache path")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0750); err != nil {
		return err
	}
	return os.WriteFile(c.cachePath, data, 0640)
}

func (c *Checker) fetchLatest(ctx context.Context) (string, error) {
	c.logger.Debug().Msgf("Fetching latest release from %s", c.apiURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "yz-cli-update-check")
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github API returned non-200 status: %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("failed to decode GitHub API response: %w", err)
	}
	if release.TagName == "" {
		return "", errors.New("github API response contained no tag_name")
	}
	return release.TagName, nil
}
