package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/htmldown/internal/config"
	"github.com/dgallion1/htmldown/internal/pipeline"
	"github.com/dgallion1/htmldown/internal/treestore"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) (*Server, *treestore.MemoryStore, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		Port:           "0",
		APIKey:         testAPIKey,
		StoreBackend:   "memory",
		WorkerCount:    1,
		MaxQueueSize:   8,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := treestore.NewMemoryStore()
	orch := pipeline.NewOrchestrator(cfg, store, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg), store, orch
}

func authReq(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestServer_HealthIsPublic(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestServer_AuthRequired(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestServer_ConvertRawHTMLToMarkdown(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body := strings.NewReader("<html><body><h1>Title</h1><p>hello <em>world</em></p></body></html>")
	req := authReq(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", "text/html")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	md, _ := resp["markdown"].(string)
	if !strings.Contains(md, "# Title") || !strings.Contains(md, "*world*") {
		t.Errorf("markdown: %q", md)
	}
}

func TestServer_ConvertMultipartJSONFormat(t *testing.T) {
	srv, _, _ := newTestServer(t)

	buf, ct := multipartUpload(t, "page.html",
		"<html><body><h1>Doc</h1><p>text</p></body></html>",
		map[string]string{"format": "json"})
	req := authReq(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Document struct {
			Title   string `json:"title"`
			Content []struct {
				Title string `json:"title"`
				Level int    `json:"level"`
			} `json:"content"`
		} `json:"document"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Document.Content) != 1 || resp.Document.Content[0].Title != "Doc" {
		t.Errorf("document: %+v", resp.Document)
	}
}

func TestServer_ConvertHeadingStyleOverride(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := authReq(http.MethodPost, "/api/convert?heading_style=setext",
		strings.NewReader("<h2>Sub</h2>"))
	req.Header.Set("Content-Type", "text/html")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	md, _ := resp["markdown"].(string)
	if !strings.Contains(md, "Sub\n---") {
		t.Errorf("expected setext heading, got %q", md)
	}
}

func TestServer_ConvertUnsupportedExtension(t *testing.T) {
	srv, _, _ := newTestServer(t)

	buf, ct := multipartUpload(t, "img.png", "notanimage", nil)
	req := authReq(http.MethodPost, "/api/convert", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServer_ConvertStoreFlagPersists(t *testing.T) {
	srv, store, _ := newTestServer(t)

	req := authReq(http.MethodPost, "/api/convert?store=true",
		strings.NewReader("<h1>Kept</h1>"))
	req.Header.Set("Content-Type", "text/html")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	docID, _ := resp["doc_id"].(string)
	if docID == "" {
		t.Fatalf("expected doc_id in response: %v", resp)
	}
	saved, err := store.Get(context.Background(), docID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if !strings.Contains(saved.Markdown, "# Kept") {
		t.Errorf("stored markdown: %q", saved.Markdown)
	}
}

func TestServer_AsyncConvertLifecycle(t *testing.T) {
	srv, store, _ := newTestServer(t)

	buf, ct := multipartUpload(t, "doc.html",
		"<html><body><h1>Async</h1><p>content</p></body></html>", nil)
	req := authReq(http.MethodPost, "/api/convert/async", buf)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		JobID string `json:"job_id"`
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Poll until the worker finishes.
	deadline := time.Now().Add(5 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, authReq(http.MethodGet, "/api/convert/"+submitted.JobID+"/status", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status poll: %d", rec.Code)
		}
		var poll struct {
			Status string `json:"status"`
		}
		json.Unmarshal(rec.Body.Bytes(), &poll)
		status = poll.Status
		if status == string(pipeline.StatusCompleted) || status == string(pipeline.StatusFailed) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status != string(pipeline.StatusCompleted) {
		t.Fatalf("job did not complete, last status %q", status)
	}

	saved, err := store.Get(context.Background(), submitted.DocID)
	if err != nil {
		t.Fatalf("converted record not stored: %v", err)
	}
	if !strings.Contains(saved.Markdown, "# Async") {
		t.Errorf("stored markdown: %q", saved.Markdown)
	}
}

func TestServer_StatusUnknownJob(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodGet, "/api/convert/nope/status", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestServer_DocumentCRUD(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	store.Put(ctx, &treestore.Record{ID: "d1", Markdown: "# One\n", CreatedAt: time.Now()})

	// List
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodGet, "/api/documents", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "d1") {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}

	// Get JSON
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodGet, "/api/documents/d1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	var got treestore.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got.ID != "d1" {
		t.Fatalf("get decode: %v %+v", err, got)
	}

	// Get raw markdown
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodGet, "/api/documents/d1?format=markdown", nil))
	if rec.Body.String() != "# One\n" {
		t.Errorf("markdown body: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("content type: %q", ct)
	}

	// Head
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodHead, "/api/documents/d1", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("head existing: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodHead, "/api/documents/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("head missing: %d", rec.Code)
	}

	// Delete
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodDelete, "/api/documents/d1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, authReq(http.MethodDelete, "/api/documents/d1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("double delete: %d", rec.Code)
	}
}
