// Package config provides configuration loading for the cut-release application.
// Settings come from environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"

	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
)

// Environment variable names.
const (
	EnvProject       = "RELEASE_PROJECT"
	EnvRelease       = "RELEASE_NUMBER"
	EnvPackageDir    = "RELEASE_PACKAGE_DIR"
	EnvRemote        = "RELEASE_REMOTE"
	EnvDefaultBranch = "RELEASE_DEFAULT_BRANCH"
	EnvMode          = "RELEASE_MODE"
	EnvRepoPath      = "RELEASE_REPO_PATH"
	EnvAuthorName    = "RELEASE_AUTHOR_NAME"
	EnvAuthorEmail   = "RELEASE_AUTHOR_EMAIL"
	EnvGitToken      = "RELEASE_GIT_TOKEN"

	// EnvLogLevel is the log level (debug, info, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"
)

// Default values.
const (
	DefaultProject       = "projectA"
	DefaultRelease       = "2.0"
	DefaultRemote        = "origin"
	DefaultDefaultBranch = "master"
	DefaultMode          = domain.ModeFull
	DefaultRepoPath      = "."
	DefaultLogLevel      = "info"
	DefaultLogAppName    = "cut-release"
	DefaultEnvFile       = ".env"
)

// Configuration errors. All of them match domain.ErrInvalidConfig.
var (
	ErrProjectRequired = fmt.Errorf("%w: project name is required", domain.ErrInvalidConfig)
	ErrInvalidProject  = fmt.Errorf("%w: project name must not contain '/' or whitespace", domain.ErrInvalidConfig)
	ErrInvalidRelease  = fmt.Errorf("%w: release number must be a version", domain.ErrInvalidConfig)
	ErrInvalidMode     = fmt.Errorf("%w: mode must be %q or %q", domain.ErrInvalidConfig, domain.ModeFull, domain.ModeBumpOnly)
	ErrRemoteRequired  = fmt.Errorf("%w: remote is required", domain.ErrInvalidConfig)
	ErrBranchRequired  = fmt.Errorf("%w: default branch is required", domain.ErrInvalidConfig)
	ErrEnvFileInvalid  = errors.New("failed to load env file")
)

// Config holds all application configuration.
type Config struct {
	// Project is the package being released.
	Project string

	// Release is the release identifier used in the branch name and commit message.
	Release string

	// PackageDir is the package directory whose major version is bumped.
	// Defaults to ./packages/{Project}.
	PackageDir string

	// Remote is the git remote pushed to.
	Remote string

	// DefaultBranch is the mainline branch pushed after versioning.
	DefaultBranch string

	// Mode selects full release or bump-only.
	Mode domain.Mode

	// RepoPath is the repository (and workspace) root.
	RepoPath string

	// AuthorName and AuthorEmail are the commit author fallback.
	AuthorName  string
	AuthorEmail string

	// GitToken authenticates HTTPS pushes.
	GitToken string

	// LogLevel is the logging level (debug, info, error).
	LogLevel string

	// LogAppName is the application name for log context.
	LogAppName string
}

// Load reads DefaultEnvFile if present, then builds and validates the configuration
// from environment variables. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	return LoadWithEnvFile(DefaultEnvFile)
}

// LoadWithEnvFile is Load with an explicit env file path.
// A missing file is not an error.
func LoadWithEnvFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w %s: %w", ErrEnvFileInvalid, path, err)
	}

	project := getenv(EnvProject, DefaultProject)

	cfg := &Config{
		Project:       project,
		Release:       getenv(EnvRelease, DefaultRelease),
		PackageDir:    getenv(EnvPackageDir, DefaultPackageDir(project)),
		Remote:        getenv(EnvRemote, DefaultRemote),
		DefaultBranch: getenv(EnvDefaultBranch, DefaultDefaultBranch),
		Mode:          domain.Mode(getenv(EnvMode, string(DefaultMode))),
		RepoPath:      getenv(EnvRepoPath, DefaultRepoPath),
		AuthorName:    os.Getenv(EnvAuthorName),
		AuthorEmail:   os.Getenv(EnvAuthorEmail),
		GitToken:      os.Getenv(EnvGitToken),
		LogLevel:      getenv(EnvLogLevel, DefaultLogLevel),
		LogAppName:    getenv(EnvLogAppName, DefaultLogAppName),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPackageDir returns the conventional package directory for project.
func DefaultPackageDir(project string) string {
	return "./packages/" + project
}

// Validate checks the release settings.
func (c *Config) Validate() error {
	if c.Project == "" {
		return ErrProjectRequired
	}
	if strings.ContainsAny(c.Project, "/ \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidProject, c.Project)
	}
	if _, err := semver.NewVersion(c.Release); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidRelease, c.Release, err)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidMode, c.Mode)
	}
	if c.Remote == "" {
		return ErrRemoteRequired
	}
	if c.DefaultBranch == "" {
		return ErrBranchRequired
	}
	return nil
}

// Pipeline converts the configuration into the orchestrator's settings.
func (c *Config) Pipeline() domain.PipelineConfig {
	return domain.PipelineConfig{
		Release: domain.ReleaseContext{
			Project: c.Project,
			Release: c.Release,
		},
		Mode:          c.Mode,
		PackageDir:    c.PackageDir,
		Remote:        c.Remote,
		DefaultBranch: c.DefaultBranch,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
