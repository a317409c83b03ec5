// Package git provides adapters for interacting with local Git repositories.
// This package implements the domain.VersionControl interface using go-git/v5.
package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/MyCarrier-DevOps/cut-release/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Options configures optional behaviour of GoGitRepository.
type Options struct {
	// AuthorName and AuthorEmail are used for commits when git config has no user.
	AuthorName  string
	AuthorEmail string

	// Token authenticates HTTPS pushes. Empty means no explicit auth,
	// which lets go-git fall back to the SSH agent for SSH remotes.
	Token string
}

// GoGitRepository implements domain.VersionControl using go-git/v5.
type GoGitRepository struct {
	repo   *git.Repository
	path   string
	opts   Options
	logger Logger
}

// NewGoGitRepository opens the Git repository at path.
// Returns domain.ErrRepositoryNotFound if the path is not a valid Git repository.
func NewGoGitRepository(path string, opts Options, log Logger) (*GoGitRepository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	return &GoGitRepository{
		repo:   repo,
		path:   path,
		opts:   opts,
		logger: log,
	}, nil
}

// AddAll stages every change in the working tree, including deletions.
func (r *GoGitRepository) AddAll(ctx context.Context) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	r.logger.Debug(ctx, "staged all changes", map[string]interface{}{
		"path": r.path,
	})
	return nil
}

// Commit records the staged changes with message and returns the new commit hash.
func (r *GoGitRepository) Commit(ctx context.Context, message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{Author: r.fallbackAuthor()})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Debug(ctx, "created commit", map[string]interface{}{
		"hash":    hash.String(),
		"message": message,
	})
	return hash.String(), nil
}

// fallbackAuthor returns the configured author only when git config carries no user.
// A nil author lets go-git read user.name and user.email from git config.
func (r *GoGitRepository) fallbackAuthor() *object.Signature {
	if r.opts.AuthorName == "" || r.opts.AuthorEmail == "" {
		return nil
	}

	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err == nil && cfg.User.Name != "" && cfg.User.Email != "" {
		return nil
	}

	return &object.Signature{
		Name:  r.opts.AuthorName,
		Email: r.opts.AuthorEmail,
		When:  time.Now(),
	}
}

// RevParse resolves ref to a full 40-character commit hash.
func (r *GoGitRepository) RevParse(_ context.Context, ref string) (string, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	return hash.String(), nil
}

// DescribeTags returns the nearest tag reachable from HEAD.
// A tag on HEAD is returned as-is; otherwise the result has the form
// <tag>-<distance>-g<abbrev>, matching `git describe --tags`.
// Returns domain.ErrNoTagFound if no tag is reachable.
func (r *GoGitRepository) DescribeTags(ctx context.Context) (string, error) {
	tagsByCommit, err := r.tagsByCommit()
	if err != nil {
		return "", err
	}
	if len(tagsByCommit) == 0 {
		return "", domain.ErrNoTagFound
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("failed to get commit object for HEAD: %w", err)
	}

	var (
		found     string
		tagCommit *object.Commit
	)
	iter := object.NewCommitIterCTime(commit, nil, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if names, ok := tagsByCommit[c.Hash]; ok {
			found = pickTag(names)
			tagCommit = c
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return "", fmt.Errorf("failed to walk commit history: %w", err)
	}
	if found == "" {
		return "", domain.ErrNoTagFound
	}

	distance, err := countCommitsNotIn(ctx, commit, tagCommit)
	if err != nil {
		return "", err
	}

	described := formatDescribe(found, distance, head.Hash())
	r.logger.Debug(ctx, "described HEAD", map[string]interface{}{
		"tag":      found,
		"distance": distance,
		"result":   described,
	})
	return described, nil
}

// countCommitsNotIn counts the commits reachable from head but not from base,
// the same set `git rev-list base..head` prints.
func countCommitsNotIn(ctx context.Context, head, base *object.Commit) (int, error) {
	seen := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(base, nil, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk tag history: %w", err)
	}

	count := 0
	err = object.NewCommitPreorderIter(head, seen, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk commit history: %w", err)
	}
	return count, nil
}

// tagNames groups the tags pointing at one commit.
type tagNames struct {
	annotated   []string
	lightweight []string
}

// tagsByCommit maps each tagged commit to the names of its tags.
// Annotated tags are peeled to the commit they reference.
func (r *GoGitRepository) tagsByCommit() (map[plumbing.Hash]*tagNames, error) {
	refs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	result := make(map[plumbing.Hash]*tagNames)
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		target := ref.Hash()
		annotated := false

		tag, err := r.repo.TagObject(ref.Hash())
		switch {
		case err == nil:
			c, err := tag.Commit()
			if err != nil {
				// Tags of trees or blobs cannot describe a commit.
				return nil
			}
			target = c.Hash
			annotated = true
		case !errors.Is(err, plumbing.ErrObjectNotFound):
			return err
		}

		entry, ok := result[target]
		if !ok {
			entry = &tagNames{}
			result[target] = entry
		}
		if annotated {
			entry.annotated = append(entry.annotated, name)
		} else {
			entry.lightweight = append(entry.lightweight, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return result, nil
}

// pickTag prefers annotated tags, then the greatest name.
func pickTag(names *tagNames) string {
	candidates := names.annotated
	if len(candidates) == 0 {
		candidates = names.lightweight
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	return sorted[len(sorted)-1]
}

func formatDescribe(tag string, distance int, head plumbing.Hash) string {
	if distance == 0 {
		return tag
	}
	return fmt.Sprintf("%s-%d-g%s", tag, distance, head.String()[:7])
}

// CheckoutNewBranch creates branch name at startPoint and checks it out.
// Returns domain.ErrEmptyStartPoint if startPoint is empty.
func (r *GoGitRepository) CheckoutNewBranch(ctx context.Context, name, startPoint string) error {
	if startPoint == "" {
		return domain.ErrEmptyStartPoint
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(startPoint))
	if err != nil {
		return fmt.Errorf("failed to resolve start point %s: %w", startPoint, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	err = wt.Checkout(&git.CheckoutOptions{
		Hash:   *hash,
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout new branch %s: %w", name, err)
	}

	r.logger.Debug(ctx, "checked out new branch", map[string]interface{}{
		"branch":      name,
		"start_point": hash.String(),
	})
	return nil
}

// pushOptions is the parsed form of git push flags.
type pushOptions struct {
	setUpstream bool
	force       bool
	followTags  bool
}

// parsePushOptions accepts the subset of git push flags the adapter supports.
func parsePushOptions(options []string) (pushOptions, error) {
	var opts pushOptions
	for _, o := range options {
		switch o {
		case "-u", "--set-upstream":
			opts.setUpstream = true
		case "-f", "--force":
			opts.force = true
		case "--follow-tags":
			opts.followTags = true
		default:
			return pushOptions{}, fmt.Errorf("unsupported push option %q", o)
		}
	}
	return opts, nil
}

// Push pushes branch to remote. With "-u" the branch is configured to track
// remote/branch after a successful push.
func (r *GoGitRepository) Push(ctx context.Context, remote, branch string, options []string) error {
	opts, err := parsePushOptions(options)
	if err != nil {
		return err
	}

	ref := plumbing.NewBranchReferenceName(branch)
	refSpec := config.RefSpec(fmt.Sprintf("%s:%s", ref, ref))
	if opts.force {
		refSpec = config.RefSpec("+" + string(refSpec))
	}

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		FollowTags: opts.followTags,
		Auth:       r.authFor(remote),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		r.logger.Warn(ctx, "remote already up to date", map[string]interface{}{
			"remote": remote,
			"branch": branch,
		})
		err = nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", branch, remote, err)
	}

	if opts.setUpstream {
		if err := r.setUpstream(remote, branch); err != nil {
			return err
		}
	}

	r.logger.Debug(ctx, "pushed branch", map[string]interface{}{
		"remote":       remote,
		"branch":       branch,
		"set_upstream": opts.setUpstream,
	})
	return nil
}

// authFor returns token credentials for HTTP(S) remotes only.
// Other transports get nil so go-git uses its defaults, such as the SSH agent.
func (r *GoGitRepository) authFor(remote string) transport.AuthMethod {
	if r.opts.Token == "" {
		return nil
	}

	rem, err := r.repo.Remote(remote)
	if err != nil {
		return nil
	}
	urls := rem.Config().URLs
	if len(urls) == 0 || !isHTTPURL(urls[0]) {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: r.opts.Token}
}

func isHTTPURL(url string) bool {
	url = strings.ToLower(url)
	return strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://")
}

func (r *GoGitRepository) setUpstream(remote, branch string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}

	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}

	if err := r.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to set upstream for %s: %w", branch, err)
	}
	return nil
}
