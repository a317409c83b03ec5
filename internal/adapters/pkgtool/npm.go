// Package pkgtool provides the package-manager and monorepo version adapter.
// It bumps versions by running npm and yarn lerna as child processes.
package pkgtool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Logger defines the logging interface for the version tool adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Runner runs a command in dir and returns its stdout.
// The returned error includes stderr when the command exits non-zero.
type Runner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s failed: %w\nstderr: %s",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// NpmLerna implements domain.VersionTool with `npm version` and `yarn lerna version`.
type NpmLerna struct {
	root   string
	run    Runner
	logger Logger
}

// NewNpmLerna creates a version tool rooted at the workspace directory root.
// A nil runner uses ExecRunner.
func NewNpmLerna(root string, run Runner, log Logger) *NpmLerna {
	if run == nil {
		run = ExecRunner
	}
	return &NpmLerna{root: root, run: run, logger: log}
}

// BumpMajor runs `npm version major` in packageDir and returns the new version
// without its "v" prefix. A relative packageDir is resolved against the workspace root.
func (n *NpmLerna) BumpMajor(ctx context.Context, packageDir string) (string, error) {
	dir := packageDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(n.root, dir)
	}

	out, err := n.run(ctx, dir, "npm", "version", "major")
	if err != nil {
		return "", err
	}

	version, err := parseVersionOutput(out)
	if err != nil {
		n.logger.Warn(ctx, "could not parse npm version output", map[string]interface{}{
			"output": strings.TrimSpace(out),
			"error":  err.Error(),
		})
		return "", nil
	}

	n.logger.Debug(ctx, "bumped package version", map[string]interface{}{
		"package_dir": dir,
		"version":     version,
	})
	return version, nil
}

// VersionWorkspace runs `yarn lerna version minor --yes` at the workspace root.
// Lerna commits and tags the result itself.
func (n *NpmLerna) VersionWorkspace(ctx context.Context) error {
	out, err := n.run(ctx, n.root, "yarn", "lerna", "version", "minor", "--yes")
	if err != nil {
		return err
	}

	n.logger.Debug(ctx, "versioned workspace", map[string]interface{}{
		"output": strings.TrimSpace(out),
	})
	return nil
}

// parseVersionOutput extracts the version npm prints as its last line, e.g. "v3.0.0".
func parseVersionOutput(out string) (string, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	v, err := semver.StrictNewVersion(strings.TrimPrefix(last, "v"))
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", last, err)
	}
	return v.String(), nil
}
