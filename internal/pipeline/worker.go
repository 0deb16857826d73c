package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/htmldown/internal/parser"
	"github.com/dgallion1/htmldown/internal/render"
	"github.com/dgallion1/htmldown/internal/section"
	"github.com/dgallion1/htmldown/internal/transform"
	"github.com/dgallion1/htmldown/internal/treestore"
)

// Worker processes a single conversion job.
type Worker struct {
	store treestore.Store
	log   *slog.Logger
	opts  render.Options
	rules []transform.Rule

	// PDFFallback allows shelling out to pdftotext when the Go PDF
	// library cannot read a file.
	PDFFallback bool
}

func NewWorker(store treestore.Store, log *slog.Logger, opts render.Options, rules []transform.Rule) *Worker {
	if rules == nil {
		rules = transform.DefaultRules()
	}
	return &Worker{
		store: store,
		log:   log,
		opts:  opts,
		rules: rules,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = w.PDFFallback
	}

	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetContentHash(ContentHashHex(job.FileData()))

	// Phase 2: Transform
	job.SetStatus(StatusTransforming, "transforming")
	cleaned, metrics, err := transform.Apply(tree, w.rules)
	if err != nil {
		log.Error("transform failed", "error", err)
		job.AddError(fmt.Sprintf("transform: %s", err))
		job.SetStatus(StatusFailed, "transforming")
		return
	}
	job.SetTransformCounts(metrics.NodesVisited, metrics.NodesChanged, metrics.NodesDeleted)
	log.Info("transformed document",
		"visited", metrics.NodesVisited,
		"changed", metrics.NodesChanged,
		"deleted", metrics.NodesDeleted)

	// Phase 3: Render Markdown and build the section hierarchy.
	job.SetStatus(StatusRendering, "rendering")
	markdown, err := render.Render(cleaned, w.opts)
	if err != nil {
		log.Error("render failed", "error", err)
		job.AddError(fmt.Sprintf("render: %s", err))
		job.SetStatus(StatusFailed, "rendering")
		return
	}
	doc := section.NewBuilder(w.opts).BuildDocument(cleaned)
	if doc.Title == "" && job.Title != "" {
		doc.Title = job.Title
	}
	job.SetSectionCount(len(doc.Content))
	for _, warning := range doc.Validate() {
		log.Warn("document validation", "warning", warning)
	}

	rec := &treestore.Record{
		ID:        job.DocID,
		Filename:  job.Filename,
		Markdown:  markdown,
		Document:  doc,
		Tree:      cleaned,
		CreatedAt: job.CreatedAt,
	}
	job.SetResult(rec)

	// Phase 4: Store, with retries on transient failures.
	job.SetStatus(StatusStoring, "storing")
	var storeErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		storeErr = w.store.Put(ctx, rec)
		if storeErr == nil || !IsRetryable(storeErr) {
			break
		}
		log.Warn("retryable store error", "attempt", attempt, "error", storeErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			storeErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if storeErr != nil {
		log.Error("store failed", "error", storeErr)
		job.AddError(fmt.Sprintf("store: %s", storeErr))
		// The conversion itself succeeded; only persistence failed.
		job.SetStatus(StatusPartial, "storing")
		return
	}

	log.Info("conversion complete", "sections", len(doc.Content), "markdown_bytes", len(markdown))
	job.SetStatus(StatusCompleted, "done")
}
