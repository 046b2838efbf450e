// SPDX-License-Identifier: MPL-2.0

package unitfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// GitRootPrefix marks a search root that names a git repository.
const GitRootPrefix = "git+"

// ErrInvalidGitRoot is returned when a git search root cannot be parsed.
var ErrInvalidGitRoot = errors.New("invalid git search root")

type (
	// GitSource is a parsed "git+<url>[@ref]" search root.
	GitSource struct {
		// URL is the repository URL passed to git.
		URL string
		// Ref is a branch, tag, or revision; empty means the default branch.
		Ref string
	}

	// GitFetcher clones and updates git search roots under a cache directory.
	GitFetcher struct {
		// CacheDir is the base directory for checkouts.
		CacheDir string

		auth transport.AuthMethod
	}
)

// IsGitRoot reports whether root names a git repository.
func IsGitRoot(root string) bool {
	return strings.HasPrefix(root, GitRootPrefix)
}

// ParseGitSource parses a "git+<url>[@ref]" search root. The ref separator
// is the last '@' after the final path separator, so "git@host:repo" style
// URLs keep their user part.
func ParseGitSource(root string) (GitSource, error) {
	rest, ok := strings.CutPrefix(root, GitRootPrefix)
	if !ok || rest == "" {
		return GitSource{}, fmt.Errorf("%w: %q", ErrInvalidGitRoot, root)
	}

	src := GitSource{URL: rest}
	if at := strings.LastIndex(rest, "@"); at > strings.LastIndexAny(rest, "/:") {
		src.URL, src.Ref = rest[:at], rest[at+1:]
		if src.Ref == "" {
			return GitSource{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidGitRoot, root)
		}
	}
	if src.URL == "" {
		return GitSource{}, fmt.Errorf("%w: %q", ErrInvalidGitRoot, root)
	}
	return src, nil
}

// String renders the source back into search-root form.
func (s GitSource) String() string {
	if s.Ref == "" {
		return GitRootPrefix + s.URL
	}
	return GitRootPrefix + s.URL + "@" + s.Ref
}

// CachePath returns the checkout directory for s under cacheDir,
// e.g. "https://github.com/user/repo.git" -> <cacheDir>/sources/github.com/user/repo.
func (s GitSource) CachePath(cacheDir string) string {
	urlPath := s.URL
	if _, after, found := strings.Cut(urlPath, "://"); found {
		urlPath = after
	}
	urlPath = strings.TrimPrefix(urlPath, "git@")
	urlPath = strings.TrimSuffix(urlPath, ".git")
	urlPath = strings.ReplaceAll(urlPath, ":", "/")
	return filepath.Join(cacheDir, "sources", filepath.FromSlash(urlPath))
}

// NewGitFetcher creates a fetcher rooted at cacheDir. Credentials are taken
// from ~/.ssh keys or the GITHUB_TOKEN, GITLAB_TOKEN and GIT_TOKEN variables.
func NewGitFetcher(cacheDir string) *GitFetcher {
	f := &GitFetcher{CacheDir: cacheDir}
	f.auth = detectAuth(os.Getenv)
	return f
}

// Fetch makes src available locally and returns the checkout directory.
// An existing checkout is updated on a best-effort basis.
func (f *GitFetcher) Fetch(ctx context.Context, src GitSource) (string, error) {
	dest := src.CachePath(f.CacheDir)

	repo, err := git.PlainOpen(dest)
	if err != nil {
		repo, err = f.clone(ctx, src.URL, dest)
		if err != nil {
			return "", fmt.Errorf("failed to clone %s: %w", src.URL, err)
		}
	} else {
		// The ref may already be present locally.
		_ = f.fetch(ctx, repo) //nolint:errcheck // best-effort update
	}

	if src.Ref == "" {
		return dest, nil
	}
	if err := checkout(repo, src.Ref); err != nil {
		return "", fmt.Errorf("failed to checkout %s at %s: %w", src.URL, src.Ref, err)
	}
	return dest, nil
}

func (f *GitFetcher) clone(ctx context.Context, url, dest string) (*git.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}
	return git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:  url,
		Auth: f.auth,
	})
}

func (f *GitFetcher) fetch(ctx context.Context, repo *git.Repository) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{
		Auth:  f.auth,
		Tags:  git.AllTags,
		Force: true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// checkout moves the worktree to ref, trying it as a remote branch, a
// tag, and finally a raw revision.
func checkout(repo *git.Repository, ref string) error {
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	var lastErr error
	for _, rev := range []string{"refs/remotes/origin/" + ref, "refs/tags/" + ref, ref} {
		hash, err := repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			lastErr = err
			continue
		}
		return worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true})
	}
	return fmt.Errorf("ref %q not found: %w", ref, lastErr)
}

// detectAuth prefers an SSH key from ~/.ssh, then token variables.
// A nil result works for public repositories.
func detectAuth(getenv func(string) string) transport.AuthMethod {
	if homeDir, err := os.UserHomeDir(); err == nil {
		for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
			keyPath := filepath.Join(homeDir, ".ssh", name)
			if _, err := os.Stat(keyPath); err != nil {
				continue
			}
			if auth, err := ssh.NewPublicKeysFromFile("git", keyPath, ""); err == nil {
				return auth
			}
		}
	}
	return tokenAuth(getenv)
}

func tokenAuth(getenv func(string) string) transport.AuthMethod {
	for _, c := range []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	} {
		if token := getenv(c.env); token != "" {
			return &http.BasicAuth{Username: c.user, Password: token}
		}
	}
	return nil
}
