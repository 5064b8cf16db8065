package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitPagesUploader commits objects into a local working clone of the
// pages repository and pushes each commit to its remote. It covers
// deployments where the server holds a clone instead of calling the
// GitHub API per file.
type GitPagesUploader struct {
	mu        sync.Mutex
	dir       string
	remoteURL string
	pagesURL  string
	tokens    TokenSource
	author    object.Signature
}

// GitPagesConfig describes the local clone and where it pushes to.
type GitPagesConfig struct {
	// Dir is the working clone. It is cloned from RemoteURL when absent,
	// or initialized fresh when no remote is configured.
	Dir       string
	RemoteURL string
	// PagesBaseURL is where committed files are served from.
	PagesBaseURL string
	AuthorName   string
	AuthorEmail  string
}

// NewGitPagesUploader opens (or creates) the working clone.
func NewGitPagesUploader(cfg GitPagesConfig, tokens TokenSource) (*GitPagesUploader, error) {
	if _, err := git.PlainOpen(cfg.Dir); err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("open pages clone: %w", err)
		}
		if cfg.RemoteURL != "" {
			if _, err := git.PlainClone(cfg.Dir, false, &git.CloneOptions{URL: cfg.RemoteURL}); err != nil {
				return nil, fmt.Errorf("clone pages repo: %w", err)
			}
		} else {
			if _, err := git.PlainInit(cfg.Dir, false); err != nil {
				return nil, fmt.Errorf("init pages repo: %w", err)
			}
		}
	}

	name := cfg.AuthorName
	if name == "" {
		name = "olleblog"
	}
	email := cfg.AuthorEmail
	if email == "" {
		email = "uploads@olleblog.dev"
	}

	return &GitPagesUploader{
		dir:       cfg.Dir,
		remoteURL: cfg.RemoteURL,
		pagesURL:  strings.TrimRight(cfg.PagesBaseURL, "/"),
		tokens:    tokens,
		author:    object.Signature{Name: name, Email: email},
	}, nil
}

// Upload writes data into the clone, commits it, and pushes when a remote
// is configured. Commits are serialized; the worktree is shared state.
func (u *GitPagesUploader) Upload(ctx context.Context, filePath string, data []byte, contentType string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	repo, err := git.PlainOpen(u.dir)
	if err != nil {
		return "", fmt.Errorf("open pages clone: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}

	abs := filepath.Join(u.dir, filepath.FromSlash(filePath))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if _, err := worktree.Add(filePath); err != nil {
		return "", fmt.Errorf("git add upload: %w", err)
	}

	sig := u.author
	sig.When = time.Now()
	if _, err := worktree.Commit("Upload travel image: "+path.Base(filePath), &git.CommitOptions{Author: &sig}); err != nil {
		return "", fmt.Errorf("commit upload: %w", err)
	}

	if u.remoteURL != "" {
		if err := u.push(ctx, repo); err != nil {
			return "", err
		}
	}
	return filePath, nil
}

func (u *GitPagesUploader) push(ctx context.Context, repo *git.Repository) error {
	opts := &git.PushOptions{RemoteURL: u.remoteURL}
	if u.tokens != nil {
		token, err := u.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("resolve push token: %w", err)
		}
		if token != "" {
			// GitHub accepts any non-empty username with a PAT password.
			opts.Auth = &http.BasicAuth{Username: "token", Password: token}
		}
	}

	err := repo.PushContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		if u.tokens != nil && strings.Contains(err.Error(), "authentication required") {
			if clearErr := u.tokens.Invalidate(ctx); clearErr != nil {
				return fmt.Errorf("invalidate rejected token: %w", clearErr)
			}
			return fmt.Errorf("push upload: %w", ErrBadCredentials)
		}
		return fmt.Errorf("push upload: %w", err)
	}
	return nil
}

func (u *GitPagesUploader) ResolveURL(ctx context.Context, ref string) (string, error) {
	return u.pagesURL + "/" + strings.TrimLeft(ref, "/"), nil
}
