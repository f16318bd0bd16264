package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "forms-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for fetching or scraping the form catalog.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBase is the VA Forms API endpoint.
	APIBase string `json:"api_base" yaml:"api_base"`

	// PerPage is the page size requested from the API (default 100).
	PerPage int `json:"per_page" yaml:"per_page"`

	// RequestsPerSecond caps the catalog request rate (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// CatalogPath is where the catalog JSON is written and read
	// (default "va_forms.json").
	CatalogPath string `json:"catalog_path" yaml:"catalog_path"`
}

// AcquisitionConfig holds settings for the PDF download stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// DataDir is the base directory for pipeline output
	// (contains raw/, metadata/, summaries/, embeddings/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// AIConfig holds settings for the OpenAI-backed cleanup, summarization,
// and embedding calls.
type AIConfig struct {
	// Model is the chat model used for cleanup and summarization
	// (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// EmbeddingModel is the embedding model (e.g. "text-embedding-3-small").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint, for OpenAI-compatible servers.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ProcessConfig groups the settings the form processor needs for one pass.
type ProcessConfig struct {
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition"`
	AI          AIConfig          `json:"ai" yaml:"ai"`

	// StartID resumes processing at the form with this catalog id.
	// Empty processes the whole catalog.
	StartID string `json:"start_id,omitempty" yaml:"start_id,omitempty"`
}

// IndexConfig holds settings for the SQLite index and search.
type IndexConfig struct {
	// DataDir is the base directory for pipeline output (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
