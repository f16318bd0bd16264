// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process implements the form pipeline: acquire the PDF, extract
// text, clean it, summarize it, embed it, and persist artifacts. Each
// form runs to completion (or failure) before the next begins, and no
// single form's failure aborts the run.
package process

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/forms-engine/internal/acquire"
	"github.com/pdiddy/forms-engine/internal/ai"
	"github.com/pdiddy/forms-engine/internal/index"
	"github.com/pdiddy/forms-engine/internal/pdftext"
	"github.com/pdiddy/forms-engine/pkg/types"
)

// ExtractFunc parses a PDF on disk. The default is pdftext.Extract;
// tests substitute a fake.
type ExtractFunc func(path string) (pdftext.Result, error)

// Processor drives one pass over the form catalog.
type Processor struct {
	// Client performs PDF downloads.
	Client *http.Client

	// AI supplies the cleanup, summarization, and embedding calls.
	AI ai.Provider

	// Cfg carries the acquisition and AI settings for the pass.
	Cfg types.ProcessConfig

	// Store, when non-nil, receives an upsert per processed form.
	Store *index.Store

	// Extract overrides PDF parsing; nil uses pdftext.Extract.
	Extract ExtractFunc

	// OnFormDone, when non-nil, fires after each form completes,
	// regardless of outcome. The CLI hooks its progress bar here.
	OnFormDone func()
}

// Summary holds the outcome counts of one pipeline pass.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of forms visited.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Run processes forms in order, printing per-form status to w. Failures
// are recorded in the failure log and never abort the run; the returned
// Summary reflects partial successes as processed.
func (p *Processor) Run(ctx context.Context, forms []types.Form, w io.Writer) Summary {
	extract := p.Extract
	if extract == nil {
		extract = pdftext.Extract
	}
	flog := NewFailureLog(p.Cfg.Acquisition.DataDir)

	var summary Summary
	for i, form := range forms {
		if i > 0 && p.Cfg.Acquisition.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				return summary
			case <-time.After(p.Cfg.Acquisition.DownloadDelay):
			}
		}

		switch p.processForm(ctx, form, extract, flog, w) {
		case outcomeProcessed:
			summary.Processed++
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFailed:
			summary.Failed++
		}

		if p.OnFormDone != nil {
			p.OnFormDone()
		}
	}

	fmt.Fprintf(w, "\nRun summary: %d processed, %d skipped, %d failed (total: %d)\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Total())
	return summary
}

// processForm runs the six pipeline stages for one form. Download and
// extraction failures abort the form; cleanup, summarization, and
// embedding failures degrade gracefully so later stages still run on the
// best available input.
func (p *Processor) processForm(ctx context.Context, form types.Form, extract ExtractFunc, flog *FailureLog, w io.Writer) outcome {
	dataDir := p.Cfg.Acquisition.DataDir
	slug := acquire.Slug(form)

	// Skip check: a summary on disk means this form completed before.
	if _, err := os.Stat(SummaryPath(dataDir, form)); err == nil {
		fmt.Fprintf(w, "skipped: %s (summary exists)\n", slug)
		return outcomeSkipped
	}

	fmt.Fprintf(w, "processing %s: %s\n", slug, form.Title)

	pdfPath, _, err := acquire.FetchPDF(ctx, p.Client, form, p.Cfg.Acquisition, w)
	if err != nil {
		p.recordFailure(flog, form, types.StageDownload, err, w)
		return outcomeFailed
	}

	res, err := extract(pdfPath)
	if err != nil {
		p.recordFailure(flog, form, types.StageExtract, err, w)
		return outcomeFailed
	}

	entry := types.IndexEntry{
		FormName:    form.FormName,
		Title:       form.Title,
		URL:         form.URL,
		FieldsCount: res.FieldsTotal,
	}

	// Raw text persists as soon as extraction succeeds.
	rawPath := RawTextPath(dataDir, form)
	if err := writeRawTextFile(rawPath, res.Text); err != nil {
		p.recordFailure(flog, form, types.StageExtract, err, w)
	} else {
		entry.RawTextPath = relPath(dataDir, rawPath)
	}

	cleaned, err := p.AI.CleanText(ctx, res.Text)
	if err != nil || strings.TrimSpace(cleaned) == "" {
		if err != nil {
			p.recordFailure(flog, form, types.StageClean, err, w)
		}
		// Degrade to the raw text rather than aborting: a noisy summary
		// beats no summary.
		cleaned = res.Text
	}

	summaryText, err := p.AI.Summarize(ctx, ai.SummaryRequest{
		FormName:      form.FormName,
		Title:         form.Title,
		URL:           form.URL,
		FieldsContext: pdftext.FieldsContext(res.Fields),
		CleanedText:   cleaned,
	})
	if err != nil {
		p.recordFailure(flog, form, types.StageSummarize, err, w)
		summaryText = ""
	}

	var summaryVec, rawVec []float32

	if summaryText != "" {
		entry.Summary = summaryText
		summaryPath := SummaryPath(dataDir, form)
		if err := writeSummaryFile(summaryPath, form, res.FieldsTotal, summaryText); err != nil {
			p.recordFailure(flog, form, types.StageSummarize, err, w)
		} else {
			entry.SummaryPath = relPath(dataDir, summaryPath)
		}

		if summaryVec, err = p.AI.EmbedText(ctx, summaryText); err != nil {
			p.recordFailure(flog, form, types.StageEmbed, err, w)
			summaryVec = nil
		} else {
			embPath := EmbeddingPath(dataDir, form, "summary")
			if err := writeEmbeddingFile(embPath, form, "summary", summaryVec); err != nil {
				p.recordFailure(flog, form, types.StageEmbed, err, w)
			} else {
				entry.SummaryEmbeddingPath = relPath(dataDir, embPath)
			}
		}
	}

	// The raw-text embedding is independent of the summary's fate.
	if rawVec, err = p.AI.EmbedText(ctx, res.Text); err != nil {
		p.recordFailure(flog, form, types.StageEmbed, err, w)
		rawVec = nil
	} else {
		embPath := EmbeddingPath(dataDir, form, "raw")
		if err := writeEmbeddingFile(embPath, form, "raw", rawVec); err != nil {
			p.recordFailure(flog, form, types.StageEmbed, err, w)
		} else {
			entry.RawEmbeddingPath = relPath(dataDir, embPath)
		}
	}

	if err := index.AppendConsolidated(index.ConsolidatedPath(dataDir), entry); err != nil {
		fmt.Fprintf(w, "  warning: consolidated index update failed: %v\n", err)
	}

	if p.Store != nil {
		rec := index.Record{
			Entry:            entry,
			RawText:          res.Text,
			SummaryEmbedding: summaryVec,
			RawEmbedding:     rawVec,
		}
		if err := p.Store.Upsert(ctx, rec); err != nil {
			fmt.Fprintf(w, "  warning: index upsert failed: %v\n", err)
		}
	}

	fmt.Fprintf(w, "processed %s\n", slug)
	return outcomeProcessed
}

func (p *Processor) recordFailure(flog *FailureLog, form types.Form, stage types.Stage, cause error, w io.Writer) {
	fmt.Fprintf(w, "failed:  %s (%s: %v)\n", acquire.Slug(form), stage, cause)
	if err := flog.Record(form, stage, cause); err != nil {
		fmt.Fprintf(w, "  warning: failure log write failed: %v\n", err)
	}
}

func relPath(dataDir, path string) string {
	rel, err := filepath.Rel(dataDir, path)
	if err != nil {
		return path
	}
	return rel
}
