package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/htmldown/internal/parser"
	"github.com/dgallion1/htmldown/internal/pipeline"
	"github.com/dgallion1/htmldown/internal/render"
	"github.com/dgallion1/htmldown/internal/section"
	"github.com/dgallion1/htmldown/internal/transform"
	"github.com/dgallion1/htmldown/internal/treestore"
)

// handleConvert converts a document in-request and returns the result.
// Accepts a multipart upload (field "file") or a raw HTML body.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUpload(w, r)
	if err != nil {
		return // readUpload already wrote the error response
	}

	opts := s.renderOptions(r)
	format := formValueOr(r, "format", "markdown")

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	cleaned, _, err := transform.Apply(tree, transform.DefaultRules())
	if err != nil {
		jsonError(w, "transform: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := map[string]any{"filename": filename}
	var doc *section.Document
	switch format {
	case "markdown":
		md, err := render.Render(cleaned, opts)
		if err != nil {
			jsonError(w, "render: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		resp["markdown"] = md
	case "json":
		doc = section.NewBuilder(opts).BuildDocument(cleaned)
		resp["document"] = doc
	case "both":
		md, err := render.Render(cleaned, opts)
		if err != nil {
			jsonError(w, "render: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		resp["markdown"] = md
		doc = section.NewBuilder(opts).BuildDocument(cleaned)
		resp["document"] = doc
	default:
		jsonError(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
		return
	}

	// Structured output is validated; warnings are advisory unless the
	// caller asked for strict mode.
	if doc != nil {
		if warnings := doc.Validate(); len(warnings) > 0 {
			if formValueOr(r, "strict", "") == "true" {
				jsonError(w, "document validation failed: "+strings.Join(warnings, "; "), http.StatusUnprocessableEntity)
				return
			}
			resp["warnings"] = warnings
		}
	}

	// Optional persistence of the synchronous result.
	if formValueOr(r, "store", "") == "true" {
		docID := pipeline.NewID()
		md, _ := resp["markdown"].(string)
		if doc == nil {
			doc = section.NewBuilder(opts).BuildDocument(cleaned)
		}
		rec := &treestore.Record{
			ID:        docID,
			Filename:  filename,
			Markdown:  md,
			Document:  doc,
			Tree:      cleaned,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.orchestrator.Store().Put(r.Context(), rec); err != nil {
			jsonError(w, "store: "+err.Error(), http.StatusBadGateway)
			return
		}
		resp["doc_id"] = docID
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleConvertAsync queues a conversion job and returns its poll URL.
func (s *Server) handleConvertAsync(w http.ResponseWriter, r *http.Request) {
	data, filename, err := s.readUpload(w, r)
	if err != nil {
		return
	}

	docID := formValueOr(r, "doc_id", "")
	if docID == "" {
		docID = pipeline.NewID()
	}

	now := time.Now().UTC()
	job := &pipeline.Job{
		ID:        pipeline.NewID(),
		DocID:     docID,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     formValueOr(r, "title", ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"doc_id":   job.DocID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/convert/%s/status", job.ID),
	})
}

func (s *Server) handleConvertStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	})
}

// readUpload extracts the document bytes from either a multipart form or a
// raw request body, enforcing the upload limit. On failure it writes the
// error response itself and returns a non-nil error.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return nil, "", err
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return nil, "", err
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		if !parser.IsSupportedExtension(filename) {
			err := fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
			jsonError(w, err.Error(), http.StatusBadRequest)
			return nil, "", err
		}

		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return nil, "", err
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			err := fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
			jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
			return nil, "", err
		}
		return data, filename, nil
	}

	// Raw body: assume HTML unless a filename query parameter says otherwise.
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return nil, "", err
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		err := fmt.Errorf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return nil, "", err
	}
	if len(data) == 0 {
		err := fmt.Errorf("empty request body")
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, "", err
	}
	filename := sanitizeFilename(r.URL.Query().Get("filename"))
	if filename == "unnamed" {
		filename = "document.html"
	}
	if !parser.IsSupportedExtension(filename) {
		err := fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, "", err
	}
	return data, filename, nil
}

// renderOptions layers request overrides over the configured defaults.
func (s *Server) renderOptions(r *http.Request) render.Options {
	opts := s.cfg.RenderOptions()
	if v := formValueOr(r, "heading_style", ""); v != "" {
		opts.HeadingStyle = render.HeadingStyle(v)
	}
	if v := formValueOr(r, "bullet_marker", ""); v != "" {
		opts.BulletMarker = v
	}
	if v := formValueOr(r, "fenced_code_marker", ""); v != "" {
		opts.FencedCodeMarker = v
	}
	if v := formValueOr(r, "escape_pipes", ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.EscapePipes = b
		}
	}
	return opts
}

// formValueOr reads a form or query value with a fallback. Safe to call on
// non-form requests.
func formValueOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
