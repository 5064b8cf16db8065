package editor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"olleblog/api/internal/content"
	"olleblog/api/internal/docstore"
)

func newAboutEditor(t *testing.T) (*AboutEditor, *content.Service) {
	t.Helper()
	svc := content.NewService(docstore.NewMemory())
	return NewAboutEditor(svc), svc
}

func TestAboutEditorLifecycle(t *testing.T) {
	e, _ := newAboutEditor(t)
	ctx := context.Background()

	if got := e.State(SectionProfile); got != StateClosed {
		t.Fatalf("initial state = %v, want closed", got)
	}

	about, err := e.Open(ctx, SectionProfile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if about.Profile == nil || about.Profile.Name != "올레길" {
		t.Fatalf("Open should return the migrated document, got %+v", about.Profile)
	}
	if got := e.State(SectionProfile); got != StateOpen {
		t.Errorf("state after Open = %v, want open", got)
	}

	if err := e.Save(ctx, SectionProfile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := e.State(SectionProfile); got != StateClosed {
		t.Errorf("state after Save = %v, want closed", got)
	}
}

func TestAboutEditorSaveClosedSection(t *testing.T) {
	e, _ := newAboutEditor(t)
	if err := e.Save(context.Background(), SectionSkills); !errors.Is(err, ErrSectionClosed) {
		t.Fatalf("Save on closed section = %v, want ErrSectionClosed", err)
	}
}

func TestAboutEditorApplyAndSave(t *testing.T) {
	e, svc := newAboutEditor(t)
	ctx := context.Background()

	if _, err := e.Open(ctx, SectionProfile); err != nil {
		t.Fatal(err)
	}
	working, err := e.Apply(SectionProfile, Action{
		Name:   "update-profile",
		Fields: map[string]string{"name": "바당", "role": "Backend Engineer"},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if working.Profile.Name != "바당" {
		t.Errorf("working name = %q", working.Profile.Name)
	}
	if working.Profile.Avatar != "👨‍💻" {
		t.Errorf("untouched field changed: %q", working.Profile.Avatar)
	}

	// Nothing is persisted until Save.
	stored, err := svc.LoadAbout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Profile.Name != "올레길" {
		t.Errorf("stored name changed before Save: %q", stored.Profile.Name)
	}

	if err := e.Save(ctx, SectionProfile); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	stored, err = svc.LoadAbout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Profile.Name != "바당" || stored.Profile.Role != "Backend Engineer" {
		t.Errorf("stored profile = %+v, want saved working copy", stored.Profile)
	}
}

func TestAboutEditorRemoveNeedsConfirm(t *testing.T) {
	e, _ := newAboutEditor(t)
	ctx := context.Background()

	if _, err := e.Open(ctx, SectionContacts); err != nil {
		t.Fatal(err)
	}
	before, err := e.Apply(SectionContacts, Action{Name: "remove-contact", Index: 0})
	if !errors.Is(err, ErrConfirmRequired) {
		t.Fatalf("unconfirmed remove = %v, want ErrConfirmRequired", err)
	}
	if len(before.Contacts) == 0 {
		t.Fatal("unconfirmed remove must not change the working copy")
	}
	count := len(before.Contacts)

	after, err := e.Apply(SectionContacts, Action{Name: "remove-contact", Index: 0, Confirmed: true})
	if err != nil {
		t.Fatalf("confirmed remove failed: %v", err)
	}
	if len(after.Contacts) != count-1 {
		t.Errorf("contacts = %d, want %d", len(after.Contacts), count-1)
	}
}

func TestAboutEditorListActions(t *testing.T) {
	e, _ := newAboutEditor(t)
	ctx := context.Background()

	if _, err := e.Open(ctx, SectionSkills); err != nil {
		t.Fatal(err)
	}

	working, err := e.Apply(SectionSkills, Action{Name: "add-skill-category", Fields: map[string]string{"title": "Infra"}})
	if err != nil {
		t.Fatal(err)
	}
	catIndex := len(working.Skills) - 1

	working, err = e.Apply(SectionSkills, Action{Name: "add-skill-item", Index: catIndex, Fields: map[string]string{"item": "Docker"}})
	if err != nil {
		t.Fatal(err)
	}
	group := working.Skills[catIndex]
	if group.Title != "Infra" || len(group.Items) != 1 || group.Items[0] != "Docker" {
		t.Errorf("skill group = %+v", group)
	}

	if _, err := e.Apply(SectionSkills, Action{Name: "add-skill-item", Index: 99, Fields: map[string]string{"item": "x"}}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("out-of-range index = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := e.Apply(SectionSkills, Action{Name: "spin"}); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action = %v, want ErrUnknownAction", err)
	}
}

func TestAboutEditorSkillItemAddThenRemoveRestores(t *testing.T) {
	e, _ := newAboutEditor(t)
	ctx := context.Background()

	working, err := e.Open(ctx, SectionSkills)
	if err != nil {
		t.Fatal(err)
	}
	before := append([]string(nil), working.Skills[0].Items...)

	working, err = e.Apply(SectionSkills, Action{Name: "add-skill-item", Index: 0, Fields: map[string]string{"item": "k6"}})
	if err != nil {
		t.Fatal(err)
	}
	added := len(working.Skills[0].Items) - 1
	if working.Skills[0].Items[added] != "k6" {
		t.Fatalf("item not appended: %v", working.Skills[0].Items)
	}

	working, err = e.Apply(SectionSkills, Action{Name: "remove-skill-item", Index: 0, SubIndex: added, Confirmed: true})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(working.Skills[0].Items, before) {
		t.Fatalf("items = %v, want the pre-add list %v", working.Skills[0].Items, before)
	}
}

func TestAboutEditorRemoveCategoryAndExperience(t *testing.T) {
	e, _ := newAboutEditor(t)
	ctx := context.Background()

	working, err := e.Open(ctx, SectionSkills)
	if err != nil {
		t.Fatal(err)
	}
	groups := len(working.Skills)
	removedTitle := working.Skills[0].Title
	working, err = e.Apply(SectionSkills, Action{Name: "remove-skill-category", Index: 0, Confirmed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(working.Skills) != groups-1 {
		t.Fatalf("got %d groups, want %d", len(working.Skills), groups-1)
	}
	if len(working.Skills) > 0 && working.Skills[0].Title == removedTitle {
		t.Errorf("removed group %q still first", removedTitle)
	}

	working, err = e.Open(ctx, SectionExperiences)
	if err != nil {
		t.Fatal(err)
	}
	entries := len(working.Experiences)
	working, err = e.Apply(SectionExperiences, Action{Name: "remove-experience", Index: entries - 1, Confirmed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(working.Experiences) != entries-1 {
		t.Fatalf("got %d experiences, want %d", len(working.Experiences), entries-1)
	}
}

func TestAboutEditorReopenResetsWorkingCopy(t *testing.T) {
	e, _ := newAboutEditor(t)
	ctx := context.Background()

	if _, err := e.Open(ctx, SectionProfile); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Apply(SectionProfile, Action{Name: "update-profile", Fields: map[string]string{"name": "임시"}}); err != nil {
		t.Fatal(err)
	}

	about, err := e.Open(ctx, SectionProfile)
	if err != nil {
		t.Fatal(err)
	}
	if about.Profile.Name != "올레길" {
		t.Errorf("reopen kept stale edits: %q", about.Profile.Name)
	}
}

type failingSetStore struct {
	docstore.Store
	fail bool
}

func (f *failingSetStore) Set(ctx context.Context, collection, id string, doc docstore.Document) error {
	if f.fail {
		return errors.New("backend down")
	}
	return f.Store.Set(ctx, collection, id, doc)
}

func TestAboutEditorSaveFailureKeepsSessionOpen(t *testing.T) {
	store := &failingSetStore{Store: docstore.NewMemory()}
	svc := content.NewService(store)
	e := NewAboutEditor(svc)
	ctx := context.Background()

	if _, err := e.Open(ctx, SectionProfile); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Apply(SectionProfile, Action{Name: "update-profile", Fields: map[string]string{"name": "바당"}}); err != nil {
		t.Fatal(err)
	}

	store.fail = true
	if err := e.Save(ctx, SectionProfile); err == nil {
		t.Fatal("Save should surface the store failure")
	}
	if got := e.State(SectionProfile); got != StateOpen {
		t.Fatalf("state after failed Save = %v, want open for retry", got)
	}

	// The working copy survived; retry succeeds without re-entering edits.
	store.fail = false
	if err := e.Save(ctx, SectionProfile); err != nil {
		t.Fatalf("retry Save failed: %v", err)
	}
	stored, err := svc.LoadAbout(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Profile.Name != "바당" {
		t.Errorf("stored name = %q, want retried edit", stored.Profile.Name)
	}
}

func TestAboutEditorUnknownSection(t *testing.T) {
	e, _ := newAboutEditor(t)
	if _, err := e.Open(context.Background(), Section("banner")); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("Open unknown section = %v, want ErrUnknownSection", err)
	}
}
