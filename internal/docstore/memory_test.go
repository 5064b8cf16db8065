package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, "about", "profile"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc := Document{"profile": Document{"name": "올레길"}}
	if err := store.Set(ctx, "about", "profile", doc); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "about", "profile")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	profile, ok := got["profile"].(Document)
	if !ok || profile["name"] != "올레길" {
		t.Fatalf("unexpected document: %#v", got)
	}

	// Mutating the returned copy must not leak into the store.
	profile["name"] = "changed"
	got2, _ := store.Get(ctx, "about", "profile")
	if got2["profile"].(Document)["name"] != "올레길" {
		t.Fatal("Get returned a shared reference, want a copy")
	}
}

func TestMemoryUpdateMergesNamedFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "posts", "p1", Document{"title": "old", "category": "log"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Update(ctx, "posts", "p1", map[string]any{"title": "new"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.Get(ctx, "posts", "p1")
	if got["title"] != "new" || got["category"] != "log" {
		t.Fatalf("merge lost fields: %#v", got)
	}

	if err := store.Update(ctx, "posts", "missing", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing doc, got %v", err)
	}
}

func TestMemoryQueryOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	for _, item := range []struct{ id, created string }{
		{"a", "2024-01-01T00:00:00Z"},
		{"b", "2024-03-01T00:00:00Z"},
		{"c", "2024-02-01T00:00:00Z"},
	} {
		if err := store.Set(ctx, "posts", item.id, Document{"createdAt": item.created}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	out, err := store.QueryOrdered(ctx, "posts", "createdAt", true)
	if err != nil {
		t.Fatalf("QueryOrdered failed: %v", err)
	}
	wantOrder := []string{"b", "c", "a"}
	if len(out) != len(wantOrder) {
		t.Fatalf("got %d documents, want %d", len(out), len(wantOrder))
	}
	for i, want := range wantOrder {
		if out[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, out[i].ID, want)
		}
	}
}

func TestMemoryDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "posts", "p1", Document{"title": "t"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "posts", "p1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "posts", "p1"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "posts", "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
