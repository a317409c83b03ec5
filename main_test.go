package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/cut-release/cmd"
	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
	"github.com/MyCarrier-DevOps/cut-release/internal/infrastructure/config"
)

func TestToAppConfig(t *testing.T) {
	cfg := &config.Config{
		Project:       "projectA",
		Release:       "2.0",
		PackageDir:    "./packages/projectA",
		Remote:        "origin",
		DefaultBranch: "master",
		Mode:          domain.ModeFull,
		RepoPath:      "/repo",
		AuthorName:    "Release Bot",
		AuthorEmail:   "bot@example.com",
		GitToken:      "token",
		LogLevel:      "debug",
		LogAppName:    "cut-release",
	}

	app := toAppConfig(cfg)

	require.NotNil(t, app)
	assert.Equal(t, cfg.Pipeline(), app.Pipeline)
	assert.Equal(t, "/repo", app.RepoPath)
	assert.Equal(t, "Release Bot", app.AuthorName)
	assert.Equal(t, "bot@example.com", app.AuthorEmail)
	assert.Equal(t, "token", app.GitToken)
	assert.Equal(t, "debug", app.LogLevel)
	assert.Equal(t, "cut-release", app.LogAppName)
}

func TestProductionDependencies(t *testing.T) {
	deps := productionDependencies()

	require.NotNil(t, deps)
	assert.NotNil(t, deps.ConfigLoader)
	assert.NotNil(t, deps.LoggerFactory)
	assert.NotNil(t, deps.ReporterFactory)
	assert.NotNil(t, deps.VersionControlFactory)
	assert.NotNil(t, deps.VersionToolFactory)
	assert.NotNil(t, deps.OrchestratorFactory)
	assert.NotNil(t, deps.Stdout)
	assert.NotNil(t, deps.Stderr)
}

func TestProductionDependencies_ReporterWritesToGivenStreams(t *testing.T) {
	var out, errOut bytes.Buffer
	reporter := productionDependencies().ReporterFactory(&out, &errOut)

	reporter.Success("ok")
	reporter.Error("action", assert.AnError)

	assert.Contains(t, out.String(), "ok")
	assert.Contains(t, errOut.String(), "ERROR(action)")
}

func TestProductionDependencies_VersionControlRejectsNonRepository(t *testing.T) {
	deps := productionDependencies()

	_, err := deps.VersionControlFactory(&cmd.AppConfig{RepoPath: t.TempDir()}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRepositoryNotFound)
}
