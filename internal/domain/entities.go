// Package domain defines the core release entities and interfaces for cut-release.
package domain

import "fmt"

// Mode selects which configuration of the release pipeline runs.
type Mode string

const (
	// ModeFull runs the complete release pipeline, ending with a pushed release branch.
	ModeFull Mode = "full"

	// ModeBumpOnly bumps the package version and stops.
	ModeBumpOnly Mode = "bump-only"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeFull || m == ModeBumpOnly
}

// ReleaseContext names the release being cut. It is fixed for the life of a run.
type ReleaseContext struct {
	// Project is the package being released, e.g. "projectA".
	Project string

	// Release is the release identifier, e.g. "2.0".
	Release string
}

// BranchName returns the release branch name: release/{project}/{release}.
func (r ReleaseContext) BranchName() string {
	return fmt.Sprintf("release/%s/%s", r.Project, r.Release)
}

// CommitMessage returns the message used for the version bump commit.
func (r ReleaseContext) CommitMessage() string {
	return fmt.Sprintf("Publish %s for release %s", r.Project, r.Release)
}

// Status is the result class of a single step.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

// StepOutcome is the normalized result of one step function.
// It is handed to the Reporter immediately and not retained.
type StepOutcome struct {
	// Label is the human-readable action description.
	Label string

	// Status is Success or Failure.
	Status Status

	// Detail carries the error message on failure or the produced value on success.
	Detail string
}

// PipelineConfig holds everything the orchestrator needs besides its collaborators.
type PipelineConfig struct {
	Release ReleaseContext

	// Mode selects full release or version-bump-only.
	Mode Mode

	// PackageDir is the directory of the package whose major version is bumped.
	PackageDir string

	// Remote is the remote pushed to, usually "origin".
	Remote string

	// DefaultBranch is the mainline branch pushed after versioning, usually "master".
	DefaultBranch string
}

// RunResult summarizes a completed pipeline run.
type RunResult struct {
	ReleaseBumpCommitHash  string
	LernaVersionCommitHash string
	GitTag                 string
	BumpedVersion          string
	ReleaseBranch          string
}

// UpstreamFlag is the push option that records upstream tracking.
const UpstreamFlag = "-u"
