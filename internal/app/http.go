package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"olleblog/api/internal/content"
	"olleblog/api/internal/editor"
	"olleblog/api/internal/identity"
	"olleblog/api/internal/render"
	"olleblog/api/internal/upload"
)

const maxUploadBytes = 32 << 20

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(logRequests)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ready", s.handleReady)
	r.Get("/api/session", s.handleSession)
	r.Get("/api/about", s.handleAboutFragments)
	r.Get("/api/posts", s.handlePostsQuery)
	r.Get("/{category}/posts", s.handleCategoryPosts)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Put("/api/about", s.handleSaveAbout)
		r.Post("/api/admin/about/{section}/open", s.handleSectionOpen)
		r.Post("/api/admin/about/{section}/actions", s.handleSectionAction)
		r.Post("/api/admin/about/{section}/save", s.handleSectionSave)
		r.Delete("/api/admin/about/{section}", s.handleSectionClose)
		r.Get("/api/admin/editor", s.handleEditorForm)
		r.Post("/api/posts", s.handleCreatePost)
		r.Put("/api/posts/{id}", s.handleUpdatePost)
		r.Delete("/api/posts/{id}", s.handleDeletePost)
		r.Post("/api/admin/token", s.handleSaveToken)
		r.Delete("/api/admin/token", s.handleClearToken)
	})

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"docstore": map[string]any{"status": "ok"},
	}
	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["docstore"] = map[string]any{"status": "error", "error": err.Error()}
	}
	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.SessionFromToken(r.Context(), bearerToken(r))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "isAdmin": false})
		return
	}
	if session.UserID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "isAdmin": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"email":         session.Email,
		"isAdmin":       session.IsAdmin,
	})
}

func (s *HTTPServer) handleAboutFragments(w http.ResponseWriter, r *http.Request) {
	fragments, err := s.service.RenderAbout(r.Context())
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, fragments)
}

func (s *HTTPServer) handlePostsQuery(w http.ResponseWriter, r *http.Request) {
	s.renderPosts(w, r, r.URL.Query().Get("category"))
}

func (s *HTTPServer) handleCategoryPosts(w http.ResponseWriter, r *http.Request) {
	s.renderPosts(w, r, chi.URLParam(r, "category"))
}

// renderPosts answers a listing request. The bearer token is optional
// here; a valid admin token adds edit controls to the fragment, anything
// else renders the public view.
func (s *HTTPServer) renderPosts(w http.ResponseWriter, r *http.Request, category string) {
	admin := false
	if token := bearerToken(r); token != "" {
		if session, err := s.service.SessionFromToken(r.Context(), token); err == nil {
			admin = session.IsAdmin
		}
	}
	html, err := s.service.RenderPosts(r.Context(), content.Category(category), admin)
	if err != nil {
		status, code, message, details := mapError(err)
		if status >= http.StatusInternalServerError {
			// Store failures still hand the listing slot a fragment, the
			// same card the frontend shows when a fetch fails.
			writeJSON(w, status, map[string]any{"html": string(render.ErrorState()), "code": code})
			return
		}
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) identity.Session {
	if v, ok := ctx.Value(sessionKey{}).(identity.Session); ok {
		return v
	}
	return identity.Anonymous()
}

// requireAdmin admits only the configured admin. Authentication failures
// are 401, a valid non-admin caller is 403.
func (s *HTTPServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.service.SessionFromToken(r.Context(), bearerToken(r))
		if err != nil || session.UserID == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return
		}
		if !session.IsAdmin {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		ctx = WithUserID(ctx, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPServer) handleSaveAbout(w http.ResponseWriter, r *http.Request) {
	var about content.About
	if err := decodeBody(r, &about); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := s.service.SaveAbout(r.Context(), about); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleSectionOpen(w http.ResponseWriter, r *http.Request) {
	section := editor.Section(chi.URLParam(r, "section"))
	about, err := s.service.OpenAboutSection(r.Context(), section)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   s.service.AboutSectionState(section),
		"working": about,
	})
}

func (s *HTTPServer) handleSectionAction(w http.ResponseWriter, r *http.Request) {
	section := editor.Section(chi.URLParam(r, "section"))
	var action editor.Action
	if err := decodeBody(r, &action); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	working, err := s.service.ApplyAboutAction(section, action)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":   s.service.AboutSectionState(section),
		"working": working,
	})
}

func (s *HTTPServer) handleSectionSave(w http.ResponseWriter, r *http.Request) {
	section := editor.Section(chi.URLParam(r, "section"))
	if err := s.service.SaveAboutSection(r.Context(), section); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": editor.StateClosed})
}

func (s *HTTPServer) handleSectionClose(w http.ResponseWriter, r *http.Request) {
	s.service.CloseAboutSection(editor.Section(chi.URLParam(r, "section")))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "state": editor.StateClosed})
}

// handleEditorForm backs the ?edit= deep link: it returns the populated
// form for an existing post, or a 404 with the admin listing as the
// redirect target when the post is gone.
func (s *HTTPServer) handleEditorForm(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("edit")
	if id == "" {
		writeJSON(w, http.StatusOK, map[string]any{"form": editor.PostForm{Category: content.CategoryLog}})
		return
	}
	form, err := s.service.LoadPostForm(r.Context(), id)
	if err != nil {
		status, code, message, _ := mapError(err)
		writeError(w, status, code, message, map[string]any{"redirect": "/admin/"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form": form})
}

func (s *HTTPServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	s.submitPost(w, r, "")
}

func (s *HTTPServer) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	s.submitPost(w, r, chi.URLParam(r, "id"))
}

func (s *HTTPServer) submitPost(w http.ResponseWriter, r *http.Request, id string) {
	form, files, err := decodePostSubmission(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	form.ID = id

	redirect, err := s.service.SubmitPost(r.Context(), form, files)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"ok": true, "redirect": redirect})
}

func (s *HTTPServer) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeletePost(r.Context(), chi.URLParam(r, "id")); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleSaveToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session := sessionFrom(r.Context())
	if err := s.service.SaveUploadToken(r.Context(), session.UserID, body.Token); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleClearToken(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := s.service.ClearUploadToken(r.Context(), session.UserID); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decodePostSubmission reads a post form from either a JSON body or a
// multipart body carrying a "post" JSON field plus "images" files.
func decodePostSubmission(r *http.Request) (editor.PostForm, []upload.File, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var form editor.PostForm
		if err := decodeBody(r, &form); err != nil {
			return editor.PostForm{}, nil, err
		}
		return form, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return editor.PostForm{}, nil, fmt.Errorf("invalid multipart body")
	}
	var form editor.PostForm
	if raw := r.FormValue("post"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			return editor.PostForm{}, nil, fmt.Errorf("invalid post field")
		}
	}

	var files []upload.File
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			f, err := header.Open()
			if err != nil {
				return editor.PostForm{}, nil, fmt.Errorf("read upload %q", header.Filename)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return editor.PostForm{}, nil, fmt.Errorf("read upload %q", header.Filename)
			}
			files = append(files, upload.File{Name: header.Filename, Data: data})
		}
	}
	return form, files, nil
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		writer := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			middleware.GetReqID(r.Context()),
			r.Method,
			r.URL.Path,
			writer.Status(),
			time.Since(started).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
