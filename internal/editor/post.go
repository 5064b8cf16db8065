package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"olleblog/api/internal/content"
	"olleblog/api/internal/upload"
)

// ErrSubmitInFlight reports a submit while a previous one is still
// running; double-clicks must not publish a post twice.
var ErrSubmitInFlight = errors.New("editor: submit already in flight")

// PostForm is the post form's state as submitted.
type PostForm struct {
	ID       string            `json:"id,omitempty"`
	Category content.Category  `json:"category"`
	Title    string            `json:"title"`
	Excerpt  string            `json:"excerpt"`
	Content  string            `json:"content"`
	Tags     []string          `json:"tags"`

	// Travel fields.
	Location  string   `json:"location,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`

	// Project fields.
	Emoji  string                `json:"emoji,omitempty"`
	Status content.ProjectStatus `json:"status,omitempty"`
	Links  []content.ProjectLink `json:"links,omitempty"`
}

// AddTag adds a tag to the form, trimming and deduplicating.
func (f *PostForm) AddTag(tag string) {
	f.Tags = content.AddTag(f.Tags, tag)
}

// RemoveTag drops a tag from the form.
func (f *PostForm) RemoveTag(tag string) {
	f.Tags = content.RemoveTag(f.Tags, tag)
}

// PostEditor runs the linear write/edit flow over posts.
type PostEditor struct {
	svc     *content.Service
	uploads *upload.Orchestrator

	mu       sync.Mutex
	inFlight bool
}

func NewPostEditor(svc *content.Service, uploads *upload.Orchestrator) *PostEditor {
	return &PostEditor{svc: svc, uploads: uploads}
}

// LoadForEdit populates a form from an existing post. An absent post is a
// hard error; the caller redirects to the admin listing.
func (e *PostEditor) LoadForEdit(ctx context.Context, id string) (PostForm, error) {
	post, err := e.svc.GetPost(ctx, id)
	if err != nil {
		return PostForm{}, err
	}
	return PostForm{
		ID:        post.ID,
		Category:  post.Category,
		Title:     post.Title,
		Excerpt:   post.Excerpt,
		Content:   post.Content,
		Tags:      post.Tags,
		Location:  post.Location,
		ImageURLs: post.ImageURLs,
		Emoji:     post.Emoji,
		Status:    post.Status,
		Links:     post.Links,
	}, nil
}

// Submit publishes the form: travel posts with newly selected files upload
// them first and append the resulting URLs, then exactly one document
// write happens, an Add for a new post or a merge Update for an existing
// one. The returned path is the category listing to navigate to. A second
// submit while one is running is rejected.
func (e *PostEditor) Submit(ctx context.Context, form PostForm, files []upload.File) (string, error) {
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return "", ErrSubmitInFlight
	}
	e.inFlight = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.mu.Unlock()
	}()

	if !form.Category.Valid() {
		return "", fmt.Errorf("editor: invalid category %q", form.Category)
	}

	if form.Category == content.CategoryTravel && len(files) > 0 {
		urls, err := e.uploads.UploadBatch(ctx, files)
		if err != nil {
			return "", fmt.Errorf("upload travel images: %w", err)
		}
		form.ImageURLs = append(form.ImageURLs, urls...)
	}

	post := content.Post{
		ID:        form.ID,
		Category:  form.Category,
		Title:     form.Title,
		Excerpt:   form.Excerpt,
		Content:   form.Content,
		Tags:      form.Tags,
		Location:  form.Location,
		ImageURLs: form.ImageURLs,
		Emoji:     form.Emoji,
		Status:    form.Status,
		Links:     form.Links,
	}

	if form.ID == "" {
		if _, err := e.svc.CreatePost(ctx, post); err != nil {
			return "", err
		}
	} else {
		if err := e.svc.UpdatePost(ctx, form.ID, post); err != nil {
			return "", err
		}
	}
	return "/" + string(form.Category) + "/", nil
}

// Delete removes a post after the caller's confirm step.
func (e *PostEditor) Delete(ctx context.Context, id string) error {
	return e.svc.DeletePost(ctx, id)
}
