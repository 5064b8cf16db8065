// Package blob stores uploaded image bytes and resolves them to public
// URLs. Three backends are provided: a MinIO bucket, the GitHub contents
// API, and a local go-git clone of the pages repository.
package blob

import (
	"context"
	"errors"
)

// ErrBadCredentials reports that the backend rejected the upload
// credential. The credential has already been invalidated when this is
// returned; the caller should ask the admin for a fresh one.
var ErrBadCredentials = errors.New("blob: bad credentials")

// Uploader stores one object and reports the public URL it will be
// served from.
type Uploader interface {
	// Upload writes data under path and returns a backend reference,
	// usually the path itself.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// ResolveURL maps an upload reference to its public URL.
	ResolveURL(ctx context.Context, ref string) (string, error)
}

// TokenSource supplies the credential for an upload and is told when the
// backend rejects it, so a stored stale token is cleared exactly once.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

type staticToken string

func (t staticToken) Token(ctx context.Context) (string, error) { return string(t), nil }
func (t staticToken) Invalidate(ctx context.Context) error      { return nil }

// StaticToken wraps a fixed credential, typically one from the server
// environment. Invalidate is a no-op since there is nothing stored.
func StaticToken(token string) TokenSource { return staticToken(token) }
