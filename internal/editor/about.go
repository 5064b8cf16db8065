// Package editor holds the admin editing flows: per-section About editing
// with explicit working state, and the linear post form flow.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"olleblog/api/internal/content"
)

// Section names one editable region of the About document.
type Section string

const (
	SectionProfile     Section = "profile"
	SectionSkills      Section = "skills"
	SectionExperiences Section = "experiences"
	SectionInterests   Section = "interests"
	SectionContacts    Section = "contacts"
	SectionSiteInfo    Section = "siteinfo"
)

func (s Section) Valid() bool {
	switch s {
	case SectionProfile, SectionSkills, SectionExperiences, SectionInterests, SectionContacts, SectionSiteInfo:
		return true
	}
	return false
}

// SectionState is the lifecycle of one section's edit session.
type SectionState string

const (
	StateClosed SectionState = "closed"
	StateOpen   SectionState = "open"
	StateSaving SectionState = "saving"
)

var (
	ErrUnknownSection  = errors.New("editor: unknown section")
	ErrSectionClosed   = errors.New("editor: section is not open")
	ErrUnknownAction   = errors.New("editor: unknown action")
	ErrIndexOutOfRange = errors.New("editor: index out of range")
	// ErrConfirmRequired signals that a remove action needs an explicit
	// confirmation before it is applied.
	ErrConfirmRequired = errors.New("editor: removal requires confirmation")
)

// Action is one dispatched edit, named after the data-action attribute of
// the control that fired it.
type Action struct {
	Name      string            `json:"action"`
	Index     int               `json:"index"`
	SubIndex  int               `json:"subIndex"`
	Fields    map[string]string `json:"fields,omitempty"`
	Confirmed bool              `json:"confirmed,omitempty"`
}

// sectionSession is the explicit working state of one open section.
type sectionSession struct {
	state   SectionState
	working content.About
}

// AboutEditor runs the per-section edit sessions over the About document.
// Each section opens a fresh working copy of the whole migrated document;
// saving writes the full document back so a partially-loaded legacy doc
// can never clobber sections it did not carry.
type AboutEditor struct {
	svc *content.Service

	mu       sync.Mutex
	sessions map[Section]*sectionSession
}

func NewAboutEditor(svc *content.Service) *AboutEditor {
	return &AboutEditor{
		svc:      svc,
		sessions: make(map[Section]*sectionSession),
	}
}

// State reports the section's current lifecycle state.
func (e *AboutEditor) State(section Section) SectionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.sessions[section]; ok {
		return s.state
	}
	return StateClosed
}

// Open loads the migrated About document and starts an edit session for
// the section. Reopening an open section resets its working copy.
func (e *AboutEditor) Open(ctx context.Context, section Section) (content.About, error) {
	if !section.Valid() {
		return content.About{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	about, err := e.svc.LoadAbout(ctx)
	if err != nil {
		return content.About{}, err
	}

	e.mu.Lock()
	e.sessions[section] = &sectionSession{state: StateOpen, working: about}
	e.mu.Unlock()
	return about, nil
}

// Close discards the section's working copy without saving.
func (e *AboutEditor) Close(section Section) {
	e.mu.Lock()
	delete(e.sessions, section)
	e.mu.Unlock()
}

// Apply dispatches one action against the section's working copy. Remove
// actions are applied only when Confirmed is set; the first call returns
// ErrConfirmRequired so the caller can ask. The working copy is updated in
// place and returned.
func (e *AboutEditor) Apply(section Section, action Action) (content.About, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[section]
	if !ok || sess.state != StateOpen {
		return content.About{}, ErrSectionClosed
	}

	if isRemoveAction(action.Name) && !action.Confirmed {
		return sess.working, ErrConfirmRequired
	}

	if err := applyAction(&sess.working, section, action); err != nil {
		return sess.working, err
	}
	return sess.working, nil
}

// Save writes the full working document back. On success the section
// closes; on failure it stays open with the working copy intact so the
// admin can retry.
func (e *AboutEditor) Save(ctx context.Context, section Section) error {
	e.mu.Lock()
	sess, ok := e.sessions[section]
	if !ok || sess.state != StateOpen {
		e.mu.Unlock()
		return ErrSectionClosed
	}
	sess.state = StateSaving
	working := sess.working
	e.mu.Unlock()

	err := e.svc.SaveAbout(ctx, working)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		sess.state = StateOpen
		return fmt.Errorf("save %s section: %w", section, err)
	}
	delete(e.sessions, section)
	return nil
}

func isRemoveAction(name string) bool {
	switch name {
	case "remove-skill-category", "remove-skill-item", "remove-experience",
		"remove-interest", "remove-contact", "remove-paragraph":
		return true
	}
	return false
}

func applyAction(about *content.About, section Section, action Action) error {
	field := func(key string) string { return action.Fields[key] }

	switch section {
	case SectionProfile:
		if action.Name != "update-profile" {
			return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
		}
		p := *about.Profile
		if v, ok := action.Fields["avatar"]; ok {
			p.Avatar = v
		}
		if v, ok := action.Fields["name"]; ok {
			p.Name = v
		}
		if v, ok := action.Fields["role"]; ok {
			p.Role = v
		}
		if v, ok := action.Fields["bio"]; ok {
			p.Bio = v
		}
		about.Profile = &p
		return nil

	case SectionSkills:
		switch action.Name {
		case "add-skill-category":
			about.Skills = append(about.Skills, content.SkillGroup{Title: field("title")})
		case "remove-skill-category":
			if action.Index < 0 || action.Index >= len(about.Skills) {
				return ErrIndexOutOfRange
			}
			about.Skills = append(about.Skills[:action.Index], about.Skills[action.Index+1:]...)
		case "update-skill-category":
			if action.Index < 0 || action.Index >= len(about.Skills) {
				return ErrIndexOutOfRange
			}
			about.Skills[action.Index].Title = field("title")
		case "add-skill-item":
			if action.Index < 0 || action.Index >= len(about.Skills) {
				return ErrIndexOutOfRange
			}
			about.Skills[action.Index].Items = append(about.Skills[action.Index].Items, field("item"))
		case "remove-skill-item":
			if action.Index < 0 || action.Index >= len(about.Skills) {
				return ErrIndexOutOfRange
			}
			items := about.Skills[action.Index].Items
			if action.SubIndex < 0 || action.SubIndex >= len(items) {
				return ErrIndexOutOfRange
			}
			about.Skills[action.Index].Items = append(items[:action.SubIndex], items[action.SubIndex+1:]...)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
		}
		return nil

	case SectionExperiences:
		switch action.Name {
		case "add-experience":
			about.Experiences = append(about.Experiences, content.Experience{
				Date:        field("date"),
				Title:       field("title"),
				Description: field("description"),
			})
		case "remove-experience":
			if action.Index < 0 || action.Index >= len(about.Experiences) {
				return ErrIndexOutOfRange
			}
			about.Experiences = append(about.Experiences[:action.Index], about.Experiences[action.Index+1:]...)
		case "update-experience":
			if action.Index < 0 || action.Index >= len(about.Experiences) {
				return ErrIndexOutOfRange
			}
			exp := &about.Experiences[action.Index]
			if v, ok := action.Fields["date"]; ok {
				exp.Date = v
			}
			if v, ok := action.Fields["title"]; ok {
				exp.Title = v
			}
			if v, ok := action.Fields["description"]; ok {
				exp.Description = v
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
		}
		return nil

	case SectionInterests:
		switch action.Name {
		case "add-interest":
			about.Interests = append(about.Interests, content.Interest{
				Icon:        field("icon"),
				Title:       field("title"),
				Description: field("description"),
			})
		case "remove-interest":
			if action.Index < 0 || action.Index >= len(about.Interests) {
				return ErrIndexOutOfRange
			}
			about.Interests = append(about.Interests[:action.Index], about.Interests[action.Index+1:]...)
		case "update-interest":
			if action.Index < 0 || action.Index >= len(about.Interests) {
				return ErrIndexOutOfRange
			}
			in := &about.Interests[action.Index]
			if v, ok := action.Fields["icon"]; ok {
				in.Icon = v
			}
			if v, ok := action.Fields["title"]; ok {
				in.Title = v
			}
			if v, ok := action.Fields["description"]; ok {
				in.Description = v
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
		}
		return nil

	case SectionContacts:
		switch action.Name {
		case "add-contact":
			about.Contacts = append(about.Contacts, content.Contact{
				Icon:  field("icon"),
				Label: field("label"),
				Value: field("value"),
				URL:   field("url"),
			})
		case "remove-contact":
			if action.Index < 0 || action.Index >= len(about.Contacts) {
				return ErrIndexOutOfRange
			}
			about.Contacts = append(about.Contacts[:action.Index], about.Contacts[action.Index+1:]...)
		case "update-contact":
			if action.Index < 0 || action.Index >= len(about.Contacts) {
				return ErrIndexOutOfRange
			}
			c := &about.Contacts[action.Index]
			if v, ok := action.Fields["icon"]; ok {
				c.Icon = v
			}
			if v, ok := action.Fields["label"]; ok {
				c.Label = v
			}
			if v, ok := action.Fields["value"]; ok {
				c.Value = v
			}
			if v, ok := action.Fields["url"]; ok {
				c.URL = v
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
		}
		return nil

	case SectionSiteInfo:
		info := *about.SiteInfo
		switch action.Name {
		case "update-site-title":
			info.Title = field("title")
		case "add-paragraph":
			info.Paragraphs = append(info.Paragraphs, field("text"))
		case "remove-paragraph":
			if action.Index < 0 || action.Index >= len(info.Paragraphs) {
				return ErrIndexOutOfRange
			}
			info.Paragraphs = append(info.Paragraphs[:action.Index], info.Paragraphs[action.Index+1:]...)
		case "update-paragraph":
			if action.Index < 0 || action.Index >= len(info.Paragraphs) {
				return ErrIndexOutOfRange
			}
			info.Paragraphs[action.Index] = field("text")
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, action.Name)
		}
		about.SiteInfo = &info
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownSection, section)
}
