// Package content defines the two document kinds the site is built from,
// the singleton about/profile document and the posts collection, together
// with their defaults and the load/save rules around the document store.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"olleblog/api/internal/docstore"
)

type Category string

const (
	CategoryLog      Category = "log"
	CategoryTech     Category = "tech"
	CategoryTravel   Category = "travel"
	CategoryProjects Category = "projects"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryLog, CategoryTech, CategoryTravel, CategoryProjects:
		return true
	}
	return false
}

// CategoryFromPath infers the listing category from the page path. Anything
// that is not a known category page is the default log feed.
func CategoryFromPath(path string) Category {
	switch {
	case strings.Contains(path, "/tech/"):
		return CategoryTech
	case strings.Contains(path, "/travel/"):
		return CategoryTravel
	case strings.Contains(path, "/projects/"):
		return CategoryProjects
	}
	return CategoryLog
}

// AboutSchemaVersion is the current shape of the about document. Stored
// documents below this version get their missing fields backfilled from
// defaults on load (older revisions of the site never wrote interests or
// siteInfo at all).
const AboutSchemaVersion = 2

type Profile struct {
	Avatar string `json:"avatar"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Bio    string `json:"bio"`
}

type SkillGroup struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

type Experience struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Interest struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Contact struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Value string `json:"value"`
	URL   string `json:"url"`
}

type SiteInfo struct {
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// About is the singleton profile document. Every top-level field is
// independently optional on read; Migrate supplies the missing ones.
type About struct {
	SchemaVersion int          `json:"schemaVersion,omitempty"`
	Profile       *Profile     `json:"profile,omitempty"`
	Skills        []SkillGroup `json:"skills,omitempty"`
	Experiences   []Experience `json:"experiences,omitempty"`
	Interests     []Interest   `json:"interests,omitempty"`
	Contacts      []Contact    `json:"contacts,omitempty"`
	SiteInfo      *SiteInfo    `json:"siteInfo,omitempty"`
}

// Migrate backfills absent top-level fields from the stated defaults and
// stamps the current schema version. It reports whether anything changed.
// Every field is checked regardless of the stored version: a document at
// the current version can still be missing fields (a sparse PUT replaces
// the whole singleton), and readers dereference profile and siteInfo.
// The result is only persisted on the first-load create path; an existing
// document is migrated in memory for the session.
func (a *About) Migrate() bool {
	changed := false
	defaults := DefaultAbout()
	if a.Profile == nil {
		a.Profile = defaults.Profile
		changed = true
	}
	if a.Skills == nil {
		a.Skills = defaults.Skills
		changed = true
	}
	if a.Experiences == nil {
		a.Experiences = defaults.Experiences
		changed = true
	}
	if a.Interests == nil {
		a.Interests = defaults.Interests
		changed = true
	}
	if a.Contacts == nil {
		a.Contacts = defaults.Contacts
		changed = true
	}
	if a.SiteInfo == nil {
		a.SiteInfo = defaults.SiteInfo
		changed = true
	}
	if a.SchemaVersion != AboutSchemaVersion {
		a.SchemaVersion = AboutSchemaVersion
		changed = true
	}
	return changed
}

type ProjectLink struct {
	URL   string `json:"url"`
	Label string `json:"label"`
	Emoji string `json:"emoji,omitempty"`
}

type ProjectStatus string

const (
	StatusActive   ProjectStatus = "active"
	StatusPlanning ProjectStatus = "planning"
)

// Post is the shared stored shape of a post document. Category-specific
// fields are only meaningful for their category; Variant decodes them into
// a typed card once so renderers never touch the optional fields directly.
type Post struct {
	ID       string   `json:"-"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt,omitempty"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`

	// ISO-8601 strings, matching what the site has always stored.
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`

	// travel
	Location  string   `json:"location,omitempty"`
	ImageURLs []string `json:"imageUrls,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"` // legacy single-image field

	// projects
	Emoji  string        `json:"emoji,omitempty"`
	Status ProjectStatus `json:"status,omitempty"`
	Links  []ProjectLink `json:"links,omitempty"`
}

// AddTag appends tag to tags unless it is already present. Insertion order
// is preserved; duplicates are silently ignored.
func AddTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// RemoveTag drops tag from tags, preserving the order of the rest.
func RemoveTag(tags []string, tag string) []string {
	out := tags[:0:0]
	for _, existing := range tags {
		if existing != tag {
			out = append(out, existing)
		}
	}
	return out
}

func toDocument(v any) (docstore.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func fromDocument(doc docstore.Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode stored document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode stored document: %w", err)
	}
	return nil
}
