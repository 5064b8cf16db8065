// Package app composes the domain services behind the HTTP surface.
package app

import (
	"context"
	"fmt"

	"olleblog/api/internal/blob"
	"olleblog/api/internal/content"
	"olleblog/api/internal/editor"
	"olleblog/api/internal/identity"
	"olleblog/api/internal/render"
	"olleblog/api/internal/tokenstore"
	"olleblog/api/internal/upload"
)

// Service wires content, editing, uploads and identity together. HTTP
// handlers talk only to this type.
type Service struct {
	content *content.Service
	about   *editor.AboutEditor
	posts   *editor.PostEditor
	gate    *identity.Gate
	tokens  tokenstore.Store
}

func NewService(contentSvc *content.Service, gate *identity.Gate, tokens tokenstore.Store, uploads *upload.Orchestrator) *Service {
	return &Service{
		content: contentSvc,
		about:   editor.NewAboutEditor(contentSvc),
		posts:   editor.NewPostEditor(contentSvc, uploads),
		gate:    gate,
		tokens:  tokens,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.content.Ping(ctx)
}

// SessionFromToken resolves the caller. An empty token is the anonymous
// session, not an error; a bad token is an error.
func (s *Service) SessionFromToken(ctx context.Context, token string) (identity.Session, error) {
	if token == "" {
		return identity.Anonymous(), nil
	}
	return s.gate.Authenticate(ctx, token)
}

// AboutFragments is the rendered bundle for the about page, one HTML
// string per region.
type AboutFragments struct {
	Profile     string `json:"profile"`
	Skills      string `json:"skills"`
	Experiences string `json:"experiences"`
	Interests   string `json:"interests"`
	Contacts    string `json:"contacts"`
	SiteInfo    string `json:"siteInfo"`
}

func (s *Service) RenderAbout(ctx context.Context) (AboutFragments, error) {
	about, err := s.content.LoadAbout(ctx)
	if err != nil {
		return AboutFragments{}, err
	}
	return AboutFragments{
		Profile:     string(render.Profile(*about.Profile)),
		Skills:      string(render.Skills(about.Skills)),
		Experiences: string(render.Experiences(about.Experiences)),
		Interests:   string(render.Interests(about.Interests)),
		Contacts:    string(render.Contacts(about.Contacts)),
		SiteInfo:    string(render.SiteInfo(*about.SiteInfo)),
	}, nil
}

// RenderPosts returns the listing fragment for one category. Admin
// sessions get edit controls in the markup.
func (s *Service) RenderPosts(ctx context.Context, category content.Category, admin bool) (string, error) {
	if !category.Valid() {
		return "", domainError(404, "NOT_FOUND", fmt.Sprintf("unknown category %q", category), nil)
	}
	posts, err := s.content.ListPosts(ctx, category)
	if err != nil {
		return "", err
	}
	return string(render.PostList(posts, admin)), nil
}

func (s *Service) SaveAbout(ctx context.Context, about content.About) error {
	return s.content.SaveAbout(ctx, about)
}

func (s *Service) OpenAboutSection(ctx context.Context, section editor.Section) (content.About, error) {
	return s.about.Open(ctx, section)
}

func (s *Service) ApplyAboutAction(section editor.Section, action editor.Action) (content.About, error) {
	return s.about.Apply(section, action)
}

func (s *Service) SaveAboutSection(ctx context.Context, section editor.Section) error {
	return s.about.Save(ctx, section)
}

func (s *Service) CloseAboutSection(section editor.Section) {
	s.about.Close(section)
}

func (s *Service) AboutSectionState(section editor.Section) editor.SectionState {
	return s.about.State(section)
}

func (s *Service) LoadPostForm(ctx context.Context, id string) (editor.PostForm, error) {
	return s.posts.LoadForEdit(ctx, id)
}

func (s *Service) SubmitPost(ctx context.Context, form editor.PostForm, files []upload.File) (string, error) {
	return s.posts.Submit(ctx, form, files)
}

func (s *Service) DeletePost(ctx context.Context, id string) error {
	return s.posts.Delete(ctx, id)
}

func (s *Service) SaveUploadToken(ctx context.Context, userID, token string) error {
	if token == "" {
		return domainError(400, "INVALID_BODY", "token must not be empty", nil)
	}
	return s.tokens.Set(ctx, userID, token)
}

func (s *Service) ClearUploadToken(ctx context.Context, userID string) error {
	return s.tokens.Clear(ctx, userID)
}

// userIDKey carries the authenticated admin's ID through upload calls so
// the token source can find their stored credential.
type userIDKey struct{}

// WithUserID tags ctx with the acting admin's user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom reads the acting admin's user ID from ctx.
func UserIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestTokens resolves upload credentials in order: the fixed server
// token when configured, else the acting admin's stored token.
type RequestTokens struct {
	Fixed string
	Store tokenstore.Store
}

func (t RequestTokens) Token(ctx context.Context) (string, error) {
	if t.Fixed != "" {
		return t.Fixed, nil
	}
	userID := UserIDFrom(ctx)
	if userID == "" {
		return "", blob.ErrNoToken
	}
	return blob.StoredToken(t.Store, userID).Token(ctx)
}

func (t RequestTokens) Invalidate(ctx context.Context) error {
	if t.Fixed != "" {
		return nil
	}
	userID := UserIDFrom(ctx)
	if userID == "" {
		return nil
	}
	return blob.StoredToken(t.Store, userID).Invalidate(ctx)
}
