// Package cmd provides the CLI commands for cut-release.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
	"github.com/MyCarrier-DevOps/cut-release/internal/infrastructure/config"
)

// Exit codes.
const (
	ExitOK = iota
	ExitPipelineFailed
	ExitConfigError
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// ConfigLoader loads application configuration.
	ConfigLoader func() (*AppConfig, error)

	// LoggerFactory creates a logger for the given release.
	LoggerFactory func(cfg *AppConfig) Logger

	// ReporterFactory creates the operator-facing reporter.
	ReporterFactory func(stdout, stderr io.Writer) domain.Reporter

	// VersionControlFactory opens the repository at cfg.RepoPath.
	VersionControlFactory func(cfg *AppConfig, log Logger) (domain.VersionControl, error)

	// VersionToolFactory creates the package/monorepo version tool.
	VersionToolFactory func(cfg *AppConfig, log Logger) domain.VersionTool

	// OrchestratorFactory creates the release orchestrator.
	OrchestratorFactory func(
		cfg *AppConfig,
		vcs domain.VersionControl,
		tool domain.VersionTool,
		reporter domain.Reporter,
		log Logger,
	) domain.Orchestrator

	// Stdout is the writer for status lines.
	Stdout io.Writer

	// Stderr is the writer for error lines.
	Stderr io.Writer
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	Pipeline domain.PipelineConfig

	// RepoPath is the repository and workspace root.
	RepoPath string

	// AuthorName and AuthorEmail are the commit author fallback.
	AuthorName  string
	AuthorEmail string

	// GitToken authenticates HTTPS pushes.
	GitToken string

	// LogLevel is the log level setting.
	LogLevel string

	// LogAppName is the application name for logging.
	LogAppName string
}

// flagEnv maps each override flag to the environment variable it sets.
var flagEnv = []struct {
	name  string
	env   string
	usage string
}{
	{"project", config.EnvProject, "Project (package) name to release"},
	{"release", config.EnvRelease, "Release identifier, e.g. 2.0"},
	{"mode", config.EnvMode, "Pipeline mode: full or bump-only"},
	{"remote", config.EnvRemote, "Git remote to push to"},
	{"default-branch", config.EnvDefaultBranch, "Mainline branch to push"},
	{"package-dir", config.EnvPackageDir, "Directory of the package to bump"},
	{"path", config.EnvRepoPath, "Repository root"},
	{"log-level", config.EnvLogLevel, "Log level (debug, info, error)"},
}

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for cut-release.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cut-release",
		Short: "Bump versions, tag, and cut a release branch",
		Long: `cut-release automates cutting a release from a JavaScript monorepo.

In full mode it runs, in order:
  1. npm version major in the package directory
  2. commit "Publish {project} for release {release}"
  3. yarn lerna version minor --yes
  4. push the default branch
  5. create release/{project}/{release} from the bump commit
  6. push the release branch with upstream tracking

The first failing step stops the run. In bump-only mode only step 1 runs.

All settings come from the environment (or a .env file) and can be
overridden with flags. With no arguments the defaults are used.

Examples:
  # Cut the configured release
  cut-release

  # Cut release/web/3.0
  cut-release --project web --release 3.0

  # Only bump the package version
  cut-release --mode bump-only`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd, deps)
		},
	}

	// Flags override the environment; unset flags leave it untouched.
	for _, fe := range flagEnv {
		rootCmd.Flags().String(fe.name, "", fe.usage+" (env "+fe.env+")")
	}

	return rootCmd
}

// ExitError carries the process exit code for a failed run.
type ExitError struct {
	Code int
	Err  error

	// Reported is set when the reporter already showed the failure to the operator.
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// runRelease executes the release pipeline with injected dependencies.
func runRelease(cmd *cobra.Command, deps *Dependencies) error {
	if deps == nil {
		return &ExitError{Code: ExitConfigError, Err: errors.New("dependencies not configured")}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stdout := deps.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := deps.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if err := exportFlags(cmd); err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("configuration error: %w", err)}
	}

	cfg, err := deps.ConfigLoader()
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("configuration error: %w", err)}
	}

	log := deps.LoggerFactory(cfg)
	reporter := deps.ReporterFactory(stdout, stderr)

	log.Info(ctx, "starting cut-release", map[string]interface{}{
		"path": cfg.RepoPath,
		"mode": string(cfg.Pipeline.Mode),
	})

	// Bump-only runs no git step, so it works outside a repository.
	var vcs domain.VersionControl
	if cfg.Pipeline.Mode == domain.ModeFull {
		vcs, err = deps.VersionControlFactory(cfg, log)
		if err != nil {
			log.Error(ctx, "failed to open git repository", err, map[string]interface{}{
				"path": cfg.RepoPath,
			})
			if errors.Is(err, domain.ErrRepositoryNotFound) {
				err = fmt.Errorf("not a git repository: %s", cfg.RepoPath)
			}
			reporter.Error("opening repository", err)
			return &ExitError{Code: ExitPipelineFailed, Err: err, Reported: true}
		}
	}

	tool := deps.VersionToolFactory(cfg, log)
	orchestrator := deps.OrchestratorFactory(cfg, vcs, tool, reporter, log)

	if _, err := orchestrator.Run(ctx); err != nil {
		return &ExitError{
			Code:     ExitPipelineFailed,
			Err:      fmt.Errorf("release failed: %w", err),
			Reported: errors.Is(err, domain.ErrStepFailed),
		}
	}

	return nil
}

// exportFlags copies every flag the user set into its environment variable,
// so configuration loading sees a single source.
func exportFlags(cmd *cobra.Command) error {
	for _, fe := range flagEnv {
		if !cmd.Flags().Changed(fe.name) {
			continue
		}
		value, err := cmd.Flags().GetString(fe.name)
		if err != nil {
			return err
		}
		if err := os.Setenv(fe.env, value); err != nil {
			return fmt.Errorf("could not set %s: %w", fe.env, err)
		}
	}
	return nil
}

// Execute runs the root command and exits with the run's exit code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Stderr))
}

// run executes cmd and maps its error to an exit code.
// Failures the reporter already showed are not printed again.
// Errors raised by cobra itself (bad flags or arguments) are invocation errors.
func run(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		writeWarningf(stderr, "error: %v\n", err)
		return ExitConfigError
	}
	if !exitErr.Reported {
		writeWarningf(stderr, "error: %v\n", err)
	}
	return exitErr.Code
}

// writeWarningf writes a message to the given writer.
// This is a best-effort operation; errors are intentionally ignored
// because there is no recovery action if stderr writes fail.
func writeWarningf(w io.Writer, format string, args ...any) {
	_, err := fmt.Fprintf(w, format, args...)
	if err != nil {
		// Intentionally ignored: no recovery action for failed stderr writes
		return
	}
}
