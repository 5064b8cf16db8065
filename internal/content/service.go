package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"olleblog/api/internal/docstore"
)

const (
	CollectionAbout = "about"
	AboutDocID      = "profile"
	CollectionPosts = "posts"
)

// Service owns the content synchronization rules: get-or-create for the
// about singleton, ordered listing with client-side category filtering for
// posts, and whole-document replace-on-save semantics.
type Service struct {
	store docstore.Store
	now   func() time.Time
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the timestamp source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) nowISO() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// LoadAbout fetches the about singleton. When the document does not exist
// at all, the full default document is written and returned. An existing
// document below the current schema version is backfilled in memory only.
func (s *Service) LoadAbout(ctx context.Context) (About, error) {
	doc, err := s.store.Get(ctx, CollectionAbout, AboutDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		about := DefaultAbout()
		stored, err := toDocument(about)
		if err != nil {
			return About{}, err
		}
		if err := s.store.Set(ctx, CollectionAbout, AboutDocID, stored); err != nil {
			return About{}, fmt.Errorf("persist default about document: %w", err)
		}
		return about, nil
	}
	if err != nil {
		return About{}, err
	}

	var about About
	if err := fromDocument(doc, &about); err != nil {
		return About{}, err
	}
	about.Migrate()
	return about, nil
}

// SaveAbout fully replaces the about singleton.
func (s *Service) SaveAbout(ctx context.Context, about About) error {
	doc, err := toDocument(about)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, CollectionAbout, AboutDocID, doc)
}

// ListPosts returns the posts of one category, newest first. The store query
// has no filter pushdown, so filtering happens here after the ordered fetch.
func (s *Service) ListPosts(ctx context.Context, category Category) ([]Post, error) {
	keyed, err := s.store.QueryOrdered(ctx, CollectionPosts, "createdAt", true)
	if err != nil {
		return nil, err
	}
	var out []Post
	for _, item := range keyed {
		var post Post
		if err := fromDocument(item.Doc, &post); err != nil {
			return nil, err
		}
		if post.Category != category {
			continue
		}
		post.ID = item.ID
		out = append(out, post)
	}
	return out, nil
}

func (s *Service) GetPost(ctx context.Context, id string) (Post, error) {
	doc, err := s.store.Get(ctx, CollectionPosts, id)
	if err != nil {
		return Post{}, err
	}
	var post Post
	if err := fromDocument(doc, &post); err != nil {
		return Post{}, err
	}
	post.ID = id
	return post, nil
}

// CreatePost stamps creation and update times and stores the post under a
// generated identifier.
func (s *Service) CreatePost(ctx context.Context, post Post) (string, error) {
	if !post.Category.Valid() {
		return "", fmt.Errorf("unknown category %q", post.Category)
	}
	now := s.nowISO()
	post.CreatedAt = now
	post.UpdatedAt = now
	doc, err := toDocument(post)
	if err != nil {
		return "", err
	}
	return s.store.Add(ctx, CollectionPosts, doc)
}

// UpdatePost merges the editable fields of an existing post. createdAt is
// never written here; creation time is immutable after first write. Fields
// of a previous category are left in place untouched.
func (s *Service) UpdatePost(ctx context.Context, id string, post Post) error {
	if !post.Category.Valid() {
		return fmt.Errorf("unknown category %q", post.Category)
	}
	fields := map[string]any{
		"category":  string(post.Category),
		"title":     post.Title,
		"excerpt":   post.Excerpt,
		"content":   post.Content,
		"tags":      post.Tags,
		"updatedAt": s.nowISO(),
	}
	switch post.Category {
	case CategoryTravel:
		fields["location"] = post.Location
		if post.ImageURLs != nil {
			fields["imageUrls"] = post.ImageURLs
		}
	case CategoryProjects:
		fields["emoji"] = post.Emoji
		fields["status"] = string(post.Status)
		fields["links"] = post.Links
	}
	return s.store.Update(ctx, CollectionPosts, id, fields)
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	return s.store.Delete(ctx, CollectionPosts, id)
}
