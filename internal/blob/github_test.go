package blob

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"olleblog/api/internal/tokenstore"
)

func newTestUploader(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *GitHubUploader {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGitHubUploader(GitHubConfig{
		Owner:      "jejuolledev",
		Repo:       "ollekil",
		Branch:     "main",
		APIBaseURL: srv.URL,
	}, tokens, srv.Client())
}

func TestGitHubUpload(t *testing.T) {
	var got struct {
		method, path, auth, accept string
		body                       contentsRequest
	}
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.accept = r.Header.Get("Accept")
		if err := json.NewDecoder(r.Body).Decode(&got.body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"content":{}}`))
	}, StaticToken("ghp_abc"))

	ref, err := uploader.Upload(context.Background(), "assets/images/travel/1717228800000_jeju.jpg", []byte("img-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if ref != "assets/images/travel/1717228800000_jeju.jpg" {
		t.Errorf("ref = %q", ref)
	}

	if got.method != http.MethodPut {
		t.Errorf("method = %s, want PUT", got.method)
	}
	if want := "/repos/jejuolledev/ollekil/contents/assets/images/travel/1717228800000_jeju.jpg"; got.path != want {
		t.Errorf("path = %q, want %q", got.path, want)
	}
	if got.auth != "token ghp_abc" {
		t.Errorf("authorization = %q", got.auth)
	}
	if got.accept != "application/vnd.github.v3+json" {
		t.Errorf("accept = %q", got.accept)
	}
	if got.body.Branch != "main" {
		t.Errorf("branch = %q", got.body.Branch)
	}
	if want := "Upload travel image: 1717228800000_jeju.jpg"; got.body.Message != want {
		t.Errorf("message = %q, want %q", got.body.Message, want)
	}
	decoded, err := base64.StdEncoding.DecodeString(got.body.Content)
	if err != nil || string(decoded) != "img-bytes" {
		t.Errorf("content = %q (decode err %v), want base64 of img-bytes", got.body.Content, err)
	}
}

func TestGitHubUploadBadCredentialsClearsToken(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "admin-1", "stale"); err != nil {
		t.Fatal(err)
	}

	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}, StoredToken(store, "admin-1"))

	_, err := uploader.Upload(ctx, "travel/x.jpg", []byte("x"), "image/jpeg")
	if !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("Upload error = %v, want ErrBadCredentials", err)
	}
	if _, err := store.Get(ctx, "admin-1"); !errors.Is(err, tokenstore.ErrNotFound) {
		t.Errorf("stale token should have been cleared, got %v", err)
	}
}

func TestGitHubUploadServerError(t *testing.T) {
	store := tokenstore.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "admin-1", "fine"); err != nil {
		t.Fatal(err)
	}

	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, StoredToken(store, "admin-1"))

	_, err := uploader.Upload(ctx, "travel/x.jpg", []byte("x"), "image/jpeg")
	if err == nil || errors.Is(err, ErrBadCredentials) {
		t.Fatalf("Upload error = %v, want plain upstream error", err)
	}
	// A transient server error must not burn the credential.
	if token, _ := store.Get(ctx, "admin-1"); token != "fine" {
		t.Errorf("token = %q, want untouched", token)
	}
}

func TestGitHubUploadNoToken(t *testing.T) {
	uploader := newTestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	}, StoredToken(tokenstore.NewMemoryStore(), "admin-1"))

	_, err := uploader.Upload(context.Background(), "travel/x.jpg", []byte("x"), "image/jpeg")
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("Upload error = %v, want ErrNoToken", err)
	}
}

func TestGitHubResolveURL(t *testing.T) {
	uploader := NewGitHubUploader(GitHubConfig{Owner: "jejuolledev", Repo: "ollekil", Branch: "main"}, StaticToken("t"), nil)
	url, err := uploader.ResolveURL(context.Background(), "assets/images/travel/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://jejuolledev.github.io/ollekil/assets/images/travel/a.jpg"; url != want {
		t.Errorf("ResolveURL = %q, want %q", url, want)
	}
}
