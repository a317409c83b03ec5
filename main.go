// Package main is the entry point for the cut-release CLI application.
// cut-release bumps package versions, runs the monorepo version tool, and cuts
// a release/{project}/{release} branch that is pushed with upstream tracking.
package main

import (
	"io"
	"os"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/logger"

	"github.com/MyCarrier-DevOps/cut-release/cmd"
	"github.com/MyCarrier-DevOps/cut-release/internal/adapters/git"
	logadapter "github.com/MyCarrier-DevOps/cut-release/internal/adapters/logger"
	"github.com/MyCarrier-DevOps/cut-release/internal/adapters/output"
	"github.com/MyCarrier-DevOps/cut-release/internal/adapters/pkgtool"
	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
	"github.com/MyCarrier-DevOps/cut-release/internal/infrastructure/config"
	"github.com/MyCarrier-DevOps/cut-release/internal/usecases"
)

func main() {
	cmd.SetDefaultDependencies(productionDependencies())
	cmd.Execute()
}

// productionDependencies wires the real adapters into the command.
func productionDependencies() *cmd.Dependencies {
	return &cmd.Dependencies{
		ConfigLoader: loadAppConfig,

		LoggerFactory: func(cfg *cmd.AppConfig) cmd.Logger {
			// The zap logger reads LOG_LEVEL and LOG_APP_NAME from the environment.
			zapLog := logger.NewZapLoggerFromConfig()
			release := cfg.Pipeline.Release
			return logadapter.NewReleaseAdapter(zapLog, release.Project, release.Release)
		},

		ReporterFactory: func(stdout, stderr io.Writer) domain.Reporter {
			return output.NewReporterWithOutput(stdout, stderr)
		},

		VersionControlFactory: func(cfg *cmd.AppConfig, log cmd.Logger) (domain.VersionControl, error) {
			return git.NewGoGitRepository(cfg.RepoPath, git.Options{
				AuthorName:  cfg.AuthorName,
				AuthorEmail: cfg.AuthorEmail,
				Token:       cfg.GitToken,
			}, log)
		},

		VersionToolFactory: func(cfg *cmd.AppConfig, log cmd.Logger) domain.VersionTool {
			return pkgtool.NewNpmLerna(cfg.RepoPath, pkgtool.ExecRunner, log)
		},

		OrchestratorFactory: func(
			cfg *cmd.AppConfig,
			vcs domain.VersionControl,
			tool domain.VersionTool,
			reporter domain.Reporter,
			log cmd.Logger,
		) domain.Orchestrator {
			return usecases.NewReleaseOrchestrator(cfg.Pipeline, vcs, tool, reporter, log)
		},

		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// loadAppConfig loads configuration and converts it for the command layer.
func loadAppConfig() (*cmd.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return toAppConfig(cfg), nil
}

func toAppConfig(cfg *config.Config) *cmd.AppConfig {
	return &cmd.AppConfig{
		Pipeline:    cfg.Pipeline(),
		RepoPath:    cfg.RepoPath,
		AuthorName:  cfg.AuthorName,
		AuthorEmail: cfg.AuthorEmail,
		GitToken:    cfg.GitToken,
		LogLevel:    cfg.LogLevel,
		LogAppName:  cfg.LogAppName,
	}
}
