package treestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/htmldown/internal/dom"
	"github.com/dgallion1/htmldown/internal/section"
)

func sampleRecord(id string) *Record {
	tree := dom.NewDocument()
	h := dom.NewElement("h1")
	h.AppendChild(dom.NewText(id))
	tree.AppendChild(h)
	return &Record{
		ID:       id,
		Filename: id + ".html",
		Markdown: "# " + id + "\n",
		Document: &section.Document{
			Title:   id,
			Content: []*section.Section{{ID: "sec-1", Title: id, Level: 1}},
		},
		Tree:      tree,
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, sampleRecord("a")); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Filename != "a.html" || rec.Document.Title != "a" {
		t.Errorf("record mismatch: %+v", rec)
	}
}

func TestMemoryStore_GetMissingReturnsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ExistsAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Put(ctx, sampleRecord("x")); err != nil {
		t.Fatalf("put: %v", err)
	}

	ok, err := s.Exists(ctx, "x")
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}
	if err := s.Delete(ctx, "x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = s.Exists(ctx, "x")
	if err != nil || ok {
		t.Fatalf("exists after delete: %v %v", ok, err)
	}
	if err := s.Delete(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete should return ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListSortedAndLimited(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if err := s.Put(ctx, sampleRecord(id)); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	ids, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Errorf("expected sorted ids, got %v", ids)
	}

	ids, err = s.List(ctx, 2)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("limit not applied: %v", ids)
	}
}
