package usecases

import (
	"context"
	"fmt"

	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
)

// Action labels reported for each step.
const (
	ActionBumpVersion   = "bumping project versions"
	ActionCommitBump    = "committing bump to project version"
	ActionCommitHash    = "getting commit hash"
	ActionLernaVersion  = "bumping workspace versions"
	ActionDescribeTag   = "getting the git tag at head"
	ActionCutBranch     = "cutting release branch"
	labelBumpedVersion  = "Bumped project version"
	labelCommittedBump  = "Committed bump to project version"
	labelGotCommitHash  = "Got commit hash"
	labelLernaVersioned = "Bumped workspace versions"
	labelGotTag         = "Got git tag at head"
	labelCutBranch      = "Cut release branch"
)

func pushAction(remote, branch string) string {
	return fmt.Sprintf("pushing to %s %s", remote, branch)
}

func pushLabel(remote, branch string) string {
	return fmt.Sprintf("Pushed to %s %s", remote, branch)
}

// steps wraps each external operation and reports exactly one outcome per call.
type steps struct {
	vcs      domain.VersionControl
	tool     domain.VersionTool
	reporter domain.Reporter
	logger   Logger
	minimal  bool
}

// finish normalizes the result of an external operation into a StepOutcome and reports it.
// On failure it returns a *domain.StepError so the orchestrator can stop the pipeline.
func (s *steps) finish(ctx context.Context, action, label, value string, err error) error {
	outcome := domain.StepOutcome{Label: label, Status: domain.StatusSuccess, Detail: value}
	if err != nil {
		outcome = domain.StepOutcome{Label: action, Status: domain.StatusFailure, Detail: err.Error()}
	}

	s.logger.Debug(ctx, "step finished", map[string]interface{}{
		"label":  outcome.Label,
		"status": outcome.Status.String(),
		"detail": outcome.Detail,
	})

	if outcome.Status == domain.StatusFailure {
		if s.minimal {
			s.reporter.Abort(err)
		} else {
			s.reporter.Error(action, err)
		}
		return &domain.StepError{Action: action, Err: err}
	}

	s.reporter.Success(outcome.Label)
	return nil
}

func (s *steps) bumpForRelease(ctx context.Context, packageDir string) (string, error) {
	version, err := s.tool.BumpMajor(ctx, packageDir)
	if err := s.finish(ctx, ActionBumpVersion, labelBumpedVersion, version, err); err != nil {
		return "", err
	}
	return version, nil
}

func (s *steps) commitBumpForRelease(ctx context.Context, release domain.ReleaseContext) error {
	err := s.vcs.AddAll(ctx)
	if err == nil {
		_, err = s.vcs.Commit(ctx, release.CommitMessage())
	}
	return s.finish(ctx, ActionCommitBump, labelCommittedBump, "", err)
}

func (s *steps) commitHashAtHead(ctx context.Context) (string, error) {
	hash, err := s.vcs.RevParse(ctx, "HEAD")
	if err := s.finish(ctx, ActionCommitHash, labelGotCommitHash, hash, err); err != nil {
		return "", err
	}
	return hash, nil
}

func (s *steps) lernaVersion(ctx context.Context) error {
	return s.finish(ctx, ActionLernaVersion, labelLernaVersioned, "", s.tool.VersionWorkspace(ctx))
}

func (s *steps) tagAtHead(ctx context.Context) (string, error) {
	tag, err := s.vcs.DescribeTags(ctx)
	if err := s.finish(ctx, ActionDescribeTag, labelGotTag, tag, err); err != nil {
		return "", err
	}
	return tag, nil
}

func (s *steps) push(ctx context.Context, remote, branch string, options []string) error {
	err := s.vcs.Push(ctx, remote, branch, options)
	return s.finish(ctx, pushAction(remote, branch), pushLabel(remote, branch), "", err)
}

func (s *steps) cutReleaseBranch(ctx context.Context, name, startPoint string) error {
	var err error
	if startPoint == "" {
		err = domain.ErrEmptyStartPoint
	} else {
		err = s.vcs.CheckoutNewBranch(ctx, name, startPoint)
	}
	return s.finish(ctx, ActionCutBranch, labelCutBranch, name, err)
}
