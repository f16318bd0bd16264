// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Form holds catalog metadata and file paths for a single VA form.
type Form struct {
	// ID is the catalog entry identifier (e.g. "VA10-10EZ" or an API row id).
	ID string `json:"id" yaml:"id"`

	// FormName is the form's short name used for artifact filenames
	// (e.g. "VA21-0781").
	FormName string `json:"form_name" yaml:"form_name"`

	// Title is the human-readable form title.
	Title string `json:"title" yaml:"title"`

	// URL is the source location of the form PDF.
	URL string `json:"url" yaml:"url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	// Empty until acquisition succeeds.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
}

// FormField describes one fillable field found in a form's AcroForm dictionary.
type FormField struct {
	// Name is the field's partial name (/T).
	Name string `json:"name" yaml:"name"`

	// Label is the user-facing description (/TU), falling back to Name.
	Label string `json:"label" yaml:"label"`

	// Type is the PDF field type name (/FT): Tx, Btn, Ch, or Sig.
	Type string `json:"type" yaml:"type"`
}

// Stage identifies a pipeline stage for failure reporting.
type Stage string

const (
	StageDownload  Stage = "download"
	StageExtract   Stage = "extract"
	StageClean     Stage = "clean"
	StageSummarize Stage = "summarize"
	StageEmbed     Stage = "embed"
)

// IndexEntry is one form's row in the consolidated summary index.
type IndexEntry struct {
	FormName    string `json:"form_name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Summary     string `json:"summary,omitempty"`
	FieldsCount int    `json:"fields_count"`

	// Artifact paths, relative to the data directory. Only the artifacts
	// that were actually produced for this form are set.
	SummaryPath          string `json:"summary_path,omitempty"`
	RawTextPath          string `json:"raw_text_path,omitempty"`
	SummaryEmbeddingPath string `json:"summary_embedding_path,omitempty"`
	RawEmbeddingPath     string `json:"raw_embedding_path,omitempty"`
}
