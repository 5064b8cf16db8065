// Package upload orchestrates image batch uploads: filtering, naming,
// bounded retries, and fail-fast sequencing over a blob backend.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"olleblog/api/internal/blob"
	"olleblog/api/internal/retry"
)

// ErrNoImages reports a batch with no usable image files.
var ErrNoImages = errors.New("upload: no image files in batch")

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// File is one entry in an upload batch.
type File struct {
	Name string
	Data []byte
}

// BatchError reports which file sank the batch. Files before Index were
// uploaded and their URLs are live; files after it were never attempted.
type BatchError struct {
	Index int
	Name  string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("upload %q (file %d): %v", e.Name, e.Index+1, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Orchestrator uploads image batches sequentially through an Uploader.
type Orchestrator struct {
	uploader blob.Uploader
	basePath string

	attempts       int
	attemptTimeout time.Duration
	resolveTimeout time.Duration
	backoffStep    time.Duration

	now func() time.Time
}

// Options tune the retry behavior. Zero values get the defaults used in
// production: 3 attempts, 60s per attempt, 10s URL resolution, 1s linear
// backoff.
type Options struct {
	Attempts       int
	AttemptTimeout time.Duration
	ResolveTimeout time.Duration
	BackoffStep    time.Duration
}

func NewOrchestrator(uploader blob.Uploader, basePath string, opts Options) *Orchestrator {
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 60 * time.Second
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = 10 * time.Second
	}
	if opts.BackoffStep <= 0 {
		opts.BackoffStep = time.Second
	}
	return &Orchestrator{
		uploader:       uploader,
		basePath:       strings.Trim(basePath, "/"),
		attempts:       opts.Attempts,
		attemptTimeout: opts.AttemptTimeout,
		resolveTimeout: opts.ResolveTimeout,
		backoffStep:    opts.BackoffStep,
		now:            time.Now,
	}
}

// IsImage reports whether the file looks like an image, by content
// sniffing first and extension as a fallback.
func IsImage(f File) bool {
	head := f.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if strings.HasPrefix(http.DetectContentType(head), "image/") {
		return true
	}
	_, ok := imageExts[strings.ToLower(filepath.Ext(f.Name))]
	return ok
}

func contentTypeFor(f File) string {
	head := f.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if mtype := http.DetectContentType(head); strings.HasPrefix(mtype, "image/") {
		return mtype
	}
	if mtype, ok := imageExts[strings.ToLower(filepath.Ext(f.Name))]; ok {
		return mtype
	}
	return "application/octet-stream"
}

// SanitizeName keeps letters, digits, dots and hyphens; everything else
// becomes an underscore.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}

func (o *Orchestrator) objectPath(f File) string {
	return fmt.Sprintf("%s/%d_%s", o.basePath, o.now().UnixMilli(), SanitizeName(f.Name))
}

// UploadBatch uploads every image in files, in order, and returns their
// public URLs in the same order. Non-image files are skipped before any
// upload starts; a batch with nothing left is ErrNoImages. The first file
// that exhausts its retries aborts the rest: earlier URLs are already
// live, so the caller decides whether to keep or retry them.
func (o *Orchestrator) UploadBatch(ctx context.Context, files []File) ([]string, error) {
	images := make([]File, 0, len(files))
	for _, f := range files {
		if IsImage(f) {
			images = append(images, f)
		}
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	policy := retry.Policy{
		MaxAttempts:       o.attempts,
		Backoff:           retry.Linear(o.backoffStep),
		PerAttemptTimeout: o.attemptTimeout,
	}

	urls := make([]string, 0, len(images))
	for i, f := range images {
		path := o.objectPath(f)
		contentType := contentTypeFor(f)

		var ref string
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			var uploadErr error
			ref, uploadErr = o.uploader.Upload(ctx, path, f.Data, contentType)
			if errors.Is(uploadErr, blob.ErrBadCredentials) || errors.Is(uploadErr, blob.ErrNoToken) {
				// Credential problems don't heal on retry.
				return retry.Permanent(uploadErr)
			}
			return uploadErr
		})
		if err != nil {
			return urls, &BatchError{Index: i, Name: f.Name, Err: err}
		}

		resolveCtx, cancel := context.WithTimeout(ctx, o.resolveTimeout)
		url, err := o.uploader.ResolveURL(resolveCtx, ref)
		cancel()
		if err != nil {
			return urls, &BatchError{Index: i, Name: f.Name, Err: fmt.Errorf("resolve url: %w", err)}
		}
		urls = append(urls, url)
	}
	return urls, nil
}
