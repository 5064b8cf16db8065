package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"olleblog/api/internal/blob"
)

// pngHeader is enough of a real PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

type fakeUploader struct {
	calls    []string
	failures map[string]int // base file name -> times to fail before succeeding
	err      error          // error returned by scripted failures
}

func (f *fakeUploader) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	f.calls = append(f.calls, path)
	for name, left := range f.failures {
		if strings.Contains(path, name) && left > 0 {
			f.failures[name] = left - 1
			if f.err != nil {
				return "", f.err
			}
			return "", errors.New("transient")
		}
	}
	return path, nil
}

func (f *fakeUploader) ResolveURL(ctx context.Context, ref string) (string, error) {
	return "https://pages.test/" + ref, nil
}

func newTestOrchestrator(u blob.Uploader) *Orchestrator {
	o := NewOrchestrator(u, "assets/images/travel", Options{
		AttemptTimeout: time.Second,
		BackoffStep:    time.Millisecond,
	})
	millis := int64(1717228800000)
	o.now = func() time.Time {
		millis++
		return time.UnixMilli(millis)
	}
	return o
}

func TestUploadBatchOrderAndNaming(t *testing.T) {
	fake := &fakeUploader{}
	o := newTestOrchestrator(fake)

	urls, err := o.UploadBatch(context.Background(), []File{
		{Name: "제주 일출.jpg", Data: pngHeader},
		{Name: "beach.png", Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("got %d urls, want 2", len(urls))
	}
	if want := "https://pages.test/assets/images/travel/1717228800001_" + SanitizeName("제주 일출.jpg"); urls[0] != want {
		t.Errorf("urls[0] = %q, want %q", urls[0], want)
	}
	if !strings.HasSuffix(urls[1], "_beach.png") {
		t.Errorf("urls[1] = %q, want *_beach.png", urls[1])
	}
	if !strings.Contains(urls[1], "1717228800002_") {
		t.Errorf("urls[1] = %q, want second timestamp", urls[1])
	}
}

func TestUploadBatchSkipsNonImages(t *testing.T) {
	fake := &fakeUploader{}
	o := newTestOrchestrator(fake)

	urls, err := o.UploadBatch(context.Background(), []File{
		{Name: "notes.txt", Data: []byte("plain text for sure")},
		{Name: "photo.jpg", Data: pngHeader},
	})
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	if len(urls) != 1 || !strings.Contains(urls[0], "photo.jpg") {
		t.Errorf("urls = %v, want only the image", urls)
	}
}

func TestUploadBatchEmptyAfterFilter(t *testing.T) {
	o := newTestOrchestrator(&fakeUploader{})
	_, err := o.UploadBatch(context.Background(), []File{
		{Name: "doc.pdf", Data: []byte("%PDF-1.4 not an image")},
	})
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("UploadBatch error = %v, want ErrNoImages", err)
	}
}

func TestUploadBatchRetriesTransientFailure(t *testing.T) {
	fake := &fakeUploader{failures: map[string]int{"flaky.jpg": 2}}
	o := newTestOrchestrator(fake)

	urls, err := o.UploadBatch(context.Background(), []File{{Name: "flaky.jpg", Data: pngHeader}})
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("got %d urls, want 1", len(urls))
	}
	if len(fake.calls) != 3 {
		t.Errorf("upload attempts = %d, want 3", len(fake.calls))
	}
}

func TestUploadBatchFailFast(t *testing.T) {
	fake := &fakeUploader{failures: map[string]int{"broken.jpg": 99}}
	o := newTestOrchestrator(fake)

	urls, err := o.UploadBatch(context.Background(), []File{
		{Name: "first.jpg", Data: pngHeader},
		{Name: "broken.jpg", Data: pngHeader},
		{Name: "never.jpg", Data: pngHeader},
	})

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("UploadBatch error = %v, want *BatchError", err)
	}
	if batchErr.Index != 1 || batchErr.Name != "broken.jpg" {
		t.Errorf("BatchError = %+v, want index 1 broken.jpg", batchErr)
	}
	if len(urls) != 1 || !strings.Contains(urls[0], "first.jpg") {
		t.Errorf("urls = %v, want only the first file's url", urls)
	}
	for _, call := range fake.calls {
		if strings.Contains(call, "never.jpg") {
			t.Error("third file must not be attempted after a failure")
		}
	}
}

func TestUploadBatchBadCredentialsNoRetry(t *testing.T) {
	fake := &fakeUploader{
		failures: map[string]int{"x.jpg": 99},
		err:      fmt.Errorf("upload: %w", blob.ErrBadCredentials),
	}
	o := newTestOrchestrator(fake)

	_, err := o.UploadBatch(context.Background(), []File{{Name: "x.jpg", Data: pngHeader}})
	if !errors.Is(err, blob.ErrBadCredentials) {
		t.Fatalf("UploadBatch error = %v, want ErrBadCredentials", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("upload attempts = %d, want 1 (no retry on bad credentials)", len(fake.calls))
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		file File
		want bool
	}{
		{"sniffed png", File{Name: "weird.bin", Data: pngHeader}, true},
		{"extension fallback", File{Name: "photo.JPG", Data: []byte{}}, true},
		{"plain text", File{Name: "notes.txt", Data: []byte("hello world text")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImage(tt.file); got != tt.want {
				t.Errorf("IsImage(%s) = %v, want %v", tt.file.Name, got, tt.want)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("제주 일출 (1).jpg"); got != "_______1_.jpg" {
		t.Errorf("SanitizeName = %q, want every unsafe rune replaced", got)
	}
	if got := SanitizeName("ok-file.2.png"); got != "ok-file.2.png" {
		t.Errorf("SanitizeName changed a safe name: %q", got)
	}
}
