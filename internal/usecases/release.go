// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
)

// Logger defines the logging interface required by the orchestrator.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// ReleaseOrchestrator runs the fixed release pipeline.
// Steps execute strictly in order and the first failure stops the run.
type ReleaseOrchestrator struct {
	cfg      domain.PipelineConfig
	steps    *steps
	reporter domain.Reporter
	logger   Logger
}

// NewReleaseOrchestrator creates a new ReleaseOrchestrator with the given dependencies.
// In bump-only mode failures are reported with a single abort message instead of
// an error line per action.
func NewReleaseOrchestrator(
	cfg domain.PipelineConfig,
	vcs domain.VersionControl,
	tool domain.VersionTool,
	reporter domain.Reporter,
	log Logger,
) *ReleaseOrchestrator {
	return &ReleaseOrchestrator{
		cfg: cfg,
		steps: &steps{
			vcs:      vcs,
			tool:     tool,
			reporter: reporter,
			logger:   log,
			minimal:  cfg.Mode == domain.ModeBumpOnly,
		},
		reporter: reporter,
		logger:   log,
	}
}

// Run executes the pipeline for the configured mode.
//
// Full mode:
//  1. bump the package major version
//  2. commit the bump
//  3. record the release bump commit hash
//  4. run the workspace version tool (commits and tags)
//  5. record the resulting commit hash
//  6. record the tag at HEAD
//  7. push the default branch
//  8. cut release/{project}/{release} from the release bump commit
//  9. push the release branch with upstream tracking
//
// Bump-only mode stops after step 1.
func (o *ReleaseOrchestrator) Run(ctx context.Context) (*domain.RunResult, error) {
	o.logger.Info(ctx, "starting release pipeline", map[string]interface{}{
		"mode":           string(o.cfg.Mode),
		"package_dir":    o.cfg.PackageDir,
		"remote":         o.cfg.Remote,
		"default_branch": o.cfg.DefaultBranch,
	})

	result := &domain.RunResult{}

	version, err := o.steps.bumpForRelease(ctx, o.cfg.PackageDir)
	if err != nil {
		return nil, o.abort(ctx, err)
	}
	result.BumpedVersion = version
	if version != "" {
		o.reporter.Info(fmt.Sprintf("New %s version: %s", o.cfg.Release.Project, version))
	} else {
		o.reporter.Warn(fmt.Sprintf("Could not determine the new %s version", o.cfg.Release.Project))
	}

	if o.cfg.Mode == domain.ModeBumpOnly {
		o.logger.Info(ctx, "version bump complete", map[string]interface{}{
			"version": version,
		})
		return result, nil
	}

	if err := o.steps.commitBumpForRelease(ctx, o.cfg.Release); err != nil {
		return nil, o.abort(ctx, err)
	}

	result.ReleaseBumpCommitHash, err = o.steps.commitHashAtHead(ctx)
	if err != nil {
		return nil, o.abort(ctx, err)
	}
	o.reporter.Info("Release bump commit hash: " + result.ReleaseBumpCommitHash)

	if err := o.steps.lernaVersion(ctx); err != nil {
		return nil, o.abort(ctx, err)
	}

	result.LernaVersionCommitHash, err = o.steps.commitHashAtHead(ctx)
	if err != nil {
		return nil, o.abort(ctx, err)
	}

	result.GitTag, err = o.steps.tagAtHead(ctx)
	if err != nil {
		return nil, o.abort(ctx, err)
	}
	o.reporter.Info("Lerna version commit hash: " + result.LernaVersionCommitHash)
	o.reporter.Info("Created and pushed git tag: " + result.GitTag)

	if err := o.steps.push(ctx, o.cfg.Remote, o.cfg.DefaultBranch, nil); err != nil {
		return nil, o.abort(ctx, err)
	}

	branch := o.cfg.Release.BranchName()
	if err := o.steps.cutReleaseBranch(ctx, branch, result.ReleaseBumpCommitHash); err != nil {
		return nil, o.abort(ctx, err)
	}

	if err := o.steps.push(ctx, o.cfg.Remote, branch, []string{domain.UpstreamFlag}); err != nil {
		return nil, o.abort(ctx, err)
	}
	result.ReleaseBranch = branch

	o.reporter.Info(fmt.Sprintf("Release branch %s is ready", branch))
	o.logger.Info(ctx, "release pipeline complete", map[string]interface{}{
		"release_branch":            branch,
		"release_bump_commit_hash":  result.ReleaseBumpCommitHash,
		"lerna_version_commit_hash": result.LernaVersionCommitHash,
		"git_tag":                   result.GitTag,
	})

	return result, nil
}

// abort logs the failure that halted the pipeline and returns it unchanged.
// The failing step has already reported it to the operator.
func (o *ReleaseOrchestrator) abort(ctx context.Context, err error) error {
	o.logger.Error(ctx, "release pipeline aborted", err, map[string]interface{}{
		"mode": string(o.cfg.Mode),
	})
	return err
}
