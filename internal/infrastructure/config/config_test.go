package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
)

var allEnvVars = []string{
	EnvProject, EnvRelease, EnvPackageDir, EnvRemote, EnvDefaultBranch, EnvMode,
	EnvRepoPath, EnvAuthorName, EnvAuthorEmail, EnvGitToken, EnvLogLevel, EnvLogAppName,
}

// clearEnv unsets every variable Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, prev) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadWithEnvFile(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, DefaultProject, cfg.Project)
	assert.Equal(t, DefaultRelease, cfg.Release)
	assert.Equal(t, "./packages/projectA", cfg.PackageDir)
	assert.Equal(t, DefaultRemote, cfg.Remote)
	assert.Equal(t, DefaultDefaultBranch, cfg.DefaultBranch)
	assert.Equal(t, domain.ModeFull, cfg.Mode)
	assert.Equal(t, DefaultRepoPath, cfg.RepoPath)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogAppName, cfg.LogAppName)
	assert.Empty(t, cfg.GitToken)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProject, "projectB")
	t.Setenv(EnvRelease, "3.1")
	t.Setenv(EnvRemote, "upstream")
	t.Setenv(EnvDefaultBranch, "main")
	t.Setenv(EnvMode, "bump-only")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadWithEnvFile(missingEnvFile(t))

	require.NoError(t, err)
	assert.Equal(t, "projectB", cfg.Project)
	assert.Equal(t, "3.1", cfg.Release)
	assert.Equal(t, "./packages/projectB", cfg.PackageDir, "package dir follows the project")
	assert.Equal(t, "upstream", cfg.Remote)
	assert.Equal(t, "main", cfg.DefaultBranch)
	assert.Equal(t, domain.ModeBumpOnly, cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRemote, "from-env")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "RELEASE_PROJECT=projectC\nRELEASE_NUMBER=4.0\nRELEASE_REMOTE=from-file\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := LoadWithEnvFile(envFile)

	require.NoError(t, err)
	assert.Equal(t, "projectC", cfg.Project)
	assert.Equal(t, "4.0", cfg.Release)
	assert.Equal(t, "from-env", cfg.Remote, "environment wins over the file")
}

func TestLoad_InvalidEnvFile(t *testing.T) {
	clearEnv(t)

	// A directory cannot be read as an env file.
	_, err := LoadWithEnvFile(t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnvFileInvalid)
}

func TestLoad_InvalidRelease(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRelease, "not-a-version")

	_, err := LoadWithEnvFile(missingEnvFile(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRelease)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Project:       "projectA",
			Release:       "2.0",
			Remote:        "origin",
			DefaultBranch: "master",
			Mode:          domain.ModeFull,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(_ *Config) {}},
		{name: "full semver release", mutate: func(c *Config) { c.Release = "2.0.1" }},
		{name: "v-prefixed release", mutate: func(c *Config) { c.Release = "v2" }},
		{name: "empty project", mutate: func(c *Config) { c.Project = "" }, wantErr: ErrProjectRequired},
		{name: "project with slash", mutate: func(c *Config) { c.Project = "a/b" }, wantErr: ErrInvalidProject},
		{name: "project with space", mutate: func(c *Config) { c.Project = "a b" }, wantErr: ErrInvalidProject},
		{name: "empty release", mutate: func(c *Config) { c.Release = "" }, wantErr: ErrInvalidRelease},
		{name: "bad release", mutate: func(c *Config) { c.Release = "two" }, wantErr: ErrInvalidRelease},
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "partial" }, wantErr: ErrInvalidMode},
		{name: "empty remote", mutate: func(c *Config) { c.Remote = "" }, wantErr: ErrRemoteRequired},
		{name: "empty branch", mutate: func(c *Config) { c.DefaultBranch = "" }, wantErr: ErrBranchRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestConfig_Pipeline(t *testing.T) {
	cfg := &Config{
		Project:       "projectA",
		Release:       "2.0",
		PackageDir:    "./packages/projectA",
		Remote:        "origin",
		DefaultBranch: "master",
		Mode:          domain.ModeFull,
	}

	p := cfg.Pipeline()

	assert.Equal(t, domain.ReleaseContext{Project: "projectA", Release: "2.0"}, p.Release)
	assert.Equal(t, "release/projectA/2.0", p.Release.BranchName())
	assert.Equal(t, domain.ModeFull, p.Mode)
	assert.Equal(t, "./packages/projectA", p.PackageDir)
	assert.Equal(t, "origin", p.Remote)
	assert.Equal(t, "master", p.DefaultBranch)
}
