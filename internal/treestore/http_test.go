package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeDocServer implements enough of the remote store API for the client.
type fakeDocServer struct {
	records map[string]json.RawMessage
	apiKey  string
}

func (f *fakeDocServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.apiKey != "" && r.Header.Get("Authorization") != "Bearer "+f.apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/documents/")
		switch {
		case r.Method == http.MethodPut:
			var raw json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.records[id] = raw
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/documents":
			ids := make([]string, 0, len(f.records))
			for k := range f.records {
				ids = append(ids, k)
			}
			json.NewEncoder(w).Encode(map[string]any{"ids": ids})
		case r.Method == http.MethodGet:
			raw, ok := f.records[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(raw)
		case r.Method == http.MethodHead:
			if _, ok := f.records[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete:
			if _, ok := f.records[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(f.records, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func newFakeServer(t *testing.T, apiKey string) (*httptest.Server, *fakeDocServer) {
	t.Helper()
	f := &fakeDocServer{records: make(map[string]json.RawMessage), apiKey: apiKey}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return srv, f
}

func TestHTTPStore_RoundTrip(t *testing.T) {
	srv, _ := newFakeServer(t, "secret")
	s := NewHTTPStore(srv.URL, "secret")
	ctx := context.Background()

	if err := s.Put(ctx, sampleRecord("doc1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	rec, err := s.Get(ctx, "doc1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ID != "doc1" || rec.Markdown != "# doc1\n" {
		t.Errorf("record mismatch: %+v", rec)
	}
	// The tree round-trips through JSON, which drops parent pointers; Get
	// must restore them.
	if rec.Tree == nil || len(rec.Tree.Children) == 0 {
		t.Fatalf("tree not round-tripped: %+v", rec.Tree)
	}
	if rec.Tree.Children[0].Parent != rec.Tree {
		t.Errorf("parent pointers not rebound after retrieval")
	}

	ok, err := s.Exists(ctx, "doc1")
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}

	ids, err := s.List(ctx, 0)
	if err != nil || len(ids) != 1 {
		t.Fatalf("list: %v %v", ids, err)
	}

	if err := s.Delete(ctx, "doc1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "doc1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestHTTPStore_NotFoundMapsToSentinel(t *testing.T) {
	srv, _ := newFakeServer(t, "")
	s := NewHTTPStore(srv.URL, "")
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
	ok, err := s.Exists(ctx, "missing")
	if err != nil || ok {
		t.Errorf("exists: expected false without error, got %v %v", ok, err)
	}
}

func TestHTTPStore_BadCredentialsSurfaceStatus(t *testing.T) {
	srv, _ := newFakeServer(t, "right")
	s := NewHTTPStore(srv.URL, "wrong")

	err := s.Put(context.Background(), sampleRecord("x"))
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status 401 in error, got %v", err)
	}
}
