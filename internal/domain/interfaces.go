// Package domain defines the core release entities and interfaces for cut-release.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors for configuration, version control and pipeline steps.
var (
	// ErrRepositoryNotFound indicates the specified path is not a valid Git repository.
	ErrRepositoryNotFound = errors.New("git repository not found at specified path")

	// ErrEmptyStartPoint indicates a branch cut was requested without a starting commit.
	ErrEmptyStartPoint = errors.New("branch start point must not be empty")

	// ErrNoTagFound indicates no tag is reachable from HEAD.
	ErrNoTagFound = errors.New("no names found, cannot describe anything")

	// ErrInvalidConfig indicates the release configuration failed validation.
	ErrInvalidConfig = errors.New("invalid release configuration")

	// ErrStepFailed marks an error produced by a failing pipeline step.
	ErrStepFailed = errors.New("release step failed")
)

// StepError wraps the failure of an external operation with the action it belonged to.
type StepError struct {
	Action string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Is matches ErrStepFailed so callers can detect step failures without a type assertion.
func (e *StepError) Is(target error) bool {
	return target == ErrStepFailed
}

// VersionControl is the version-control collaborator consumed by the pipeline.
type VersionControl interface {
	// AddAll stages every change in the working tree.
	AddAll(ctx context.Context) error

	// Commit records the staged changes and returns the new commit hash.
	Commit(ctx context.Context, message string) (string, error)

	// RevParse resolves ref (e.g. "HEAD") to a full commit hash.
	RevParse(ctx context.Context, ref string) (string, error)

	// DescribeTags returns the nearest tag reachable from HEAD, like `git describe --tags`.
	DescribeTags(ctx context.Context) (string, error)

	// CheckoutNewBranch creates branch name at startPoint and checks it out.
	CheckoutNewBranch(ctx context.Context, name, startPoint string) error

	// Push pushes branch to remote. Options follow git push flags; "-u" records upstream tracking.
	Push(ctx context.Context, remote, branch string, options []string) error
}

// VersionTool is the package-manager/monorepo collaborator consumed by the pipeline.
type VersionTool interface {
	// BumpMajor bumps the major version of the package at packageDir and returns the new version.
	BumpMajor(ctx context.Context, packageDir string) (string, error)

	// VersionWorkspace bumps the minor version across the whole workspace non-interactively.
	// The tool commits and tags the result itself.
	VersionWorkspace(ctx context.Context) error
}

// Reporter renders step outcomes to the operator. Implementations must not fail.
type Reporter interface {
	Error(action string, err error)
	Warn(messages ...any)
	Success(messages ...any)
	Info(messages ...any)

	// Abort prints a single terminal failure message for the bump-only mode.
	Abort(err error)
}

// Orchestrator runs the release pipeline.
type Orchestrator interface {
	Run(ctx context.Context) (*RunResult, error)
}
