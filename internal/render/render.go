// Package render maps content documents to HTML fragments. Every function
// is pure: no network access, no shared state, and each call produces the
// complete markup for its region so callers can replace the region
// wholesale on every render cycle.
package render

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"olleblog/api/internal/content"
)

const (
	emptyStateHTML = `<div class="empty-state"><div class="empty-state-icon">📭</div><p class="empty-state-text">아직 작성된 글이 없습니다.</p></div>`
	errorStateHTML = `<div class="empty-state"><div class="empty-state-icon">⚠️</div><p class="empty-state-text">포스트를 불러오는데 실패했습니다.</p></div>`

	// Representative image fallback for travel cards without any image.
	travelPlaceholder = "🏝️"

	excerptLimit = 150
)

var funcs = template.FuncMap{
	"bioLines": func(bio string) []string {
		return strings.Split(bio, "\n")
	},
	"external": func(url string) bool {
		return strings.HasPrefix(url, "http")
	},
}

var fragments = template.Must(template.New("fragments").Funcs(funcs).Parse(`
{{define "profile"}}<div class="about-intro"><div class="about-avatar">{{.Avatar}}</div><h1 class="about-name">{{.Name}}</h1><p class="about-role">{{.Role}}</p><p class="about-bio">{{range $i, $line := bioLines .Bio}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p></div>{{end}}

{{define "skills"}}{{range $ci, $cat := .}}<div class="skill-category" data-category-index="{{$ci}}"><h3 class="skill-category-title">{{.Title}}</h3><div class="skill-list">{{range $ii, $item := .Items}}<span class="skill-item" data-item-index="{{$ii}}">{{$item}}</span>{{end}}</div></div>{{end}}{{end}}

{{define "experiences"}}{{range $i, $exp := .}}<div class="timeline-item" data-exp-index="{{$i}}"><div class="timeline-date">{{.Date}}</div><h3 class="timeline-title">{{.Title}}</h3><p class="timeline-description">{{.Description}}</p></div>{{end}}{{end}}

{{define "interests"}}{{range $i, $item := .}}<div class="interest-card" data-interest-index="{{$i}}"><div class="interest-icon">{{.Icon}}</div><h3 class="interest-title">{{.Title}}</h3><p class="interest-description">{{.Description}}</p></div>{{end}}{{end}}

{{define "contacts"}}{{range $i, $c := .}}<a href="{{.URL}}" class="contact-item" data-contact-index="{{$i}}"{{if external .URL}} target="_blank" rel="noopener"{{end}}><div class="contact-icon">{{.Icon}}</div><div class="contact-info"><div class="contact-label">{{.Label}}</div><div class="contact-value">{{.Value}}</div></div></a>{{end}}{{end}}

{{define "siteinfo"}}<h2 class="site-info-title">{{.Title}}</h2>{{range .Paragraphs}}<p class="site-info-paragraph">{{.}}</p>{{end}}{{end}}

{{define "admin-controls"}}<div class="admin-controls"><button class="btn-edit" data-action="edit" data-id="{{.}}">수정</button><button class="btn-delete" data-action="delete" data-id="{{.}}">삭제</button></div>{{end}}

{{define "tags"}}{{range .}}<span class="tag">{{.}}</span>{{end}}{{end}}

{{define "default-card"}}<article class="post-card" data-id="{{.ID}}"><time class="post-date">{{.Date}}</time><h2 class="post-title"><a href="#">{{.Title}}</a></h2><p class="post-excerpt">{{.Excerpt}}</p><div class="post-tags">{{template "tags" .Tags}}</div>{{if .Admin}}{{template "admin-controls" .ID}}{{end}}</article>{{end}}

{{define "travel-card"}}<article class="post-card travel-card" data-id="{{.ID}}">{{if .Cover}}<div class="travel-cover"><img src="{{.Cover}}" alt="{{.Title}}" loading="lazy"></div>{{else}}<div class="travel-cover travel-cover-placeholder">{{.Placeholder}}</div>{{end}}<div class="travel-body"><h2 class="post-title"><a href="#">{{.Title}}</a></h2>{{if .Location}}<p class="travel-location">📍 {{.Location}}</p>{{end}}<time class="post-date">{{.Month}}</time></div>{{if .Admin}}{{template "admin-controls" .ID}}{{end}}</article>{{end}}

{{define "project-card"}}<article class="post-card project-card" data-id="{{.ID}}"><div class="project-header"><span class="project-emoji">{{.Emoji}}</span><span class="project-status {{.StatusClass}}">{{.StatusLabel}}</span></div><h2 class="post-title"><a href="#">{{.Title}}</a></h2><p class="post-excerpt">{{.Excerpt}}</p><div class="project-tech">{{range .Tags}}<span class="tech-badge">{{.}}</span>{{end}}</div>{{if .Links}}<div class="project-links">{{range .Links}}<a href="{{.URL}}" target="_blank" rel="noopener">{{.Emoji}} {{.Label}}</a>{{end}}</div>{{end}}{{if .Admin}}{{template "admin-controls" .ID}}{{end}}</article>{{end}}
`))

func exec(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		// Templates are parsed at init and data is always the matching
		// struct; an execute error here is a programming bug.
		panic(err)
	}
	return template.HTML(buf.String())
}

func Profile(p content.Profile) template.HTML {
	return exec("profile", p)
}

func Skills(groups []content.SkillGroup) template.HTML {
	return exec("skills", groups)
}

func Experiences(items []content.Experience) template.HTML {
	return exec("experiences", items)
}

func Interests(items []content.Interest) template.HTML {
	return exec("interests", items)
}

func Contacts(items []content.Contact) template.HTML {
	return exec("contacts", items)
}

func SiteInfo(info content.SiteInfo) template.HTML {
	return exec("siteinfo", info)
}

// EmptyState is rendered instead of an empty post container.
func EmptyState() template.HTML { return template.HTML(emptyStateHTML) }

// ErrorState is rendered when a listing fetch fails.
func ErrorState() template.HTML { return template.HTML(errorStateHTML) }

// Excerpt returns the card excerpt: the stored excerpt when present, else
// the first 150 characters of the content with a trailing ellipsis.
func Excerpt(excerpt, body string) string {
	if excerpt != "" {
		return excerpt
	}
	runes := []rune(body)
	if len(runes) > excerptLimit {
		runes = runes[:excerptLimit]
	}
	return string(runes) + "..."
}

func formatDate(iso, layout string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format(layout)
}

type defaultCardData struct {
	ID      string
	Date    string
	Title   string
	Excerpt string
	Tags    []string
	Admin   bool
}

type travelCardData struct {
	ID          string
	Title       string
	Cover       string
	Placeholder string
	Location    string
	Month       string
	Admin       bool
}

type projectCardData struct {
	ID          string
	Title       string
	Excerpt     string
	Emoji       string
	StatusClass string
	StatusLabel string
	Tags        []string
	Links       []content.ProjectLink
	Admin       bool
}

// PostCard renders the card for one post, dispatching on its category
// variant. Admin edit/delete controls are appended exactly once and only
// for privileged sessions.
func PostCard(post content.Post, admin bool) template.HTML {
	switch v := post.Variant().(type) {
	case content.TravelPost:
		return exec("travel-card", travelCardData{
			ID:          v.ID,
			Title:       v.Title,
			Cover:       v.CoverImage(),
			Placeholder: travelPlaceholder,
			Location:    v.Location,
			Month:       formatDate(v.CreatedAt, "2006.01"),
			Admin:       admin,
		})
	case content.ProjectPost:
		label, class := "기획 중", "status-planning"
		if v.Status == content.StatusActive {
			label, class = "운영 중", "status-active"
		}
		return exec("project-card", projectCardData{
			ID:          v.ID,
			Title:       v.Title,
			Excerpt:     Excerpt(v.Excerpt, v.Content),
			Emoji:       v.Emoji,
			StatusClass: class,
			StatusLabel: label,
			Tags:        v.Tags,
			Links:       v.Links,
			Admin:       admin,
		})
	case content.TechPost:
		return defaultCard(v.CardBase, admin)
	case content.LogPost:
		return defaultCard(v.CardBase, admin)
	default:
		return ""
	}
}

func defaultCard(base content.CardBase, admin bool) template.HTML {
	return exec("default-card", defaultCardData{
		ID:      base.ID,
		Date:    formatDate(base.CreatedAt, "2006.01.02"),
		Title:   base.Title,
		Excerpt: Excerpt(base.Excerpt, base.Content),
		Tags:    base.Tags,
		Admin:   admin,
	})
}

// PostList renders the full listing region for one category page.
func PostList(posts []content.Post, admin bool) template.HTML {
	if len(posts) == 0 {
		return EmptyState()
	}
	var buf strings.Builder
	for _, post := range posts {
		buf.WriteString(string(PostCard(post, admin)))
	}
	return template.HTML(buf.String())
}
