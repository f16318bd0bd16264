// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/forms-engine/internal/acquire"
	"github.com/pdiddy/forms-engine/pkg/types"
)

const (
	summariesDir  = "summaries"
	embeddingsDir = "embeddings"
)

// SummaryPath returns the structured summary file location for a form.
func SummaryPath(dataDir string, form types.Form) string {
	return filepath.Join(dataDir, summariesDir, acquire.Slug(form)+".txt")
}

// RawTextPath returns the raw extracted text file location for a form.
func RawTextPath(dataDir string, form types.Form) string {
	return filepath.Join(dataDir, summariesDir, acquire.Slug(form)+"_raw.txt")
}

// EmbeddingPath returns the vector file location for a form. kind is
// "summary" or "raw".
func EmbeddingPath(dataDir string, form types.Form, kind string) string {
	return filepath.Join(dataDir, embeddingsDir, fmt.Sprintf("%s_%s.json", acquire.Slug(form), kind))
}

// writeSummaryFile persists the structured summary: a metadata header
// followed by the summary body. The layout is stable because the
// consolidated index rebuilder parses it.
func writeSummaryFile(path string, form types.Form, fieldsCount int, summary string) error {
	content := fmt.Sprintf("Form: %s\nTitle: %s\nURL: %s\nFields Count: %d\n\nSummary:\n%s\n",
		form.FormName, form.Title, form.URL, fieldsCount, summary)
	return writeArtifact(path, []byte(content))
}

// writeRawTextFile persists the raw extracted text.
func writeRawTextFile(path, text string) error {
	return writeArtifact(path, []byte(text))
}

// embeddingArtifact is the on-disk shape of one vector file.
type embeddingArtifact struct {
	Identifier string    `json:"identifier"`
	Kind       string    `json:"kind"`
	Embedding  []float32 `json:"embedding"`
}

// writeEmbeddingFile persists one embedding vector as JSON.
func writeEmbeddingFile(path string, form types.Form, kind string, vec []float32) error {
	data, err := json.MarshalIndent(embeddingArtifact{
		Identifier: acquire.Slug(form),
		Kind:       kind,
		Embedding:  vec,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling embedding: %w", err)
	}
	return writeArtifact(path, data)
}

// ReadEmbeddingFile loads a vector file written by the pipeline.
func ReadEmbeddingFile(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact embeddingArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parsing embedding file %s: %w", path, err)
	}
	return artifact.Embedding, nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
