package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

const defaultAPIBaseURL = "https://api.github.com"

// GitHubUploader commits objects to a GitHub repository through the
// contents API and serves them from GitHub Pages.
type GitHubUploader struct {
	httpClient *http.Client
	apiBaseURL string
	owner      string
	repo       string
	branch     string
	tokens     TokenSource
}

// GitHubConfig identifies the pages repository uploads are committed to.
type GitHubConfig struct {
	Owner  string
	Repo   string
	Branch string
	// APIBaseURL overrides the GitHub API endpoint, for tests.
	APIBaseURL string
}

func NewGitHubUploader(cfg GitHubConfig, tokens TokenSource, httpClient *http.Client) *GitHubUploader {
	base := cfg.APIBaseURL
	if base == "" {
		base = defaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GitHubUploader{
		httpClient: httpClient,
		apiBaseURL: strings.TrimRight(base, "/"),
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     cfg.Branch,
		tokens:     tokens,
	}
}

type contentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
}

// Upload commits data under the given repository path. A rejected
// credential is invalidated before returning ErrBadCredentials.
func (u *GitHubUploader) Upload(ctx context.Context, filePath string, data []byte, contentType string) (string, error) {
	token, err := u.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve upload token: %w", err)
	}

	body, err := json.Marshal(contentsRequest{
		Message: "Upload travel image: " + path.Base(filePath),
		Content: base64.StdEncoding.EncodeToString(data),
		Branch:  u.branch,
	})
	if err != nil {
		return "", fmt.Errorf("marshal contents request: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", u.apiBaseURL, u.owner, u.repo, filePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build contents request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", filePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return filePath, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode == http.StatusUnauthorized || strings.Contains(string(respBody), "Bad credentials") {
		if err := u.tokens.Invalidate(ctx); err != nil {
			return "", fmt.Errorf("invalidate rejected token: %w", err)
		}
		return "", fmt.Errorf("upload %q: %w", filePath, ErrBadCredentials)
	}
	return "", fmt.Errorf("upload %q: github api status %d: %s", filePath, resp.StatusCode, strings.TrimSpace(string(respBody)))
}

// ResolveURL maps a committed path to its GitHub Pages URL. Pages may
// take a short while to serve a fresh commit; the URL itself is stable.
func (u *GitHubUploader) ResolveURL(ctx context.Context, ref string) (string, error) {
	return fmt.Sprintf("https://%s.github.io/%s/%s", u.owner, u.repo, strings.TrimLeft(ref, "/")), nil
}
