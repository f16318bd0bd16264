// Package acquire downloads form PDFs and writes per-form metadata records.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/forms-engine/internal/httputil"
	"github.com/pdiddy/forms-engine/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// PDFPath returns the local path a form's PDF downloads to.
func PDFPath(dataDir string, form types.Form) string {
	return filepath.Join(dataDir, rawDir, Slug(form)+".pdf")
}

// MetadataPath returns the local path of a form's metadata record.
func MetadataPath(dataDir string, form types.Form) string {
	return filepath.Join(dataDir, metadataDir, Slug(form)+".yaml")
}

// Slug converts a form name into a filesystem-safe artifact name.
func Slug(form types.Form) string {
	name := form.FormName
	if name == "" {
		name = form.ID
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_")
	return replacer.Replace(name)
}

// FetchPDF downloads a form's PDF into dataDir/raw/, skipping the download
// when the file already exists. The download goes to a temp file that is
// renamed into place only on success, so an interrupted run never leaves a
// truncated PDF behind. On success it also writes the form's metadata
// record to dataDir/metadata/.
// The skipped return value reports whether the download was skipped.
func FetchPDF(ctx context.Context, client *http.Client, form types.Form, cfg types.AcquisitionConfig, w io.Writer) (pdfPath string, skipped bool, err error) {
	if form.URL == "" {
		return "", false, fmt.Errorf("form %s has no source URL", form.FormName)
	}

	pdfPath = PDFPath(cfg.DataDir, form)
	if _, statErr := os.Stat(pdfPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (pdf already exists)\n", Slug(form))
		return pdfPath, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.DataDir, rawDir),
		filepath.Join(cfg.DataDir, metadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	fmt.Fprintf(w, "downloading: %s\n", Slug(form))

	if err := downloadFile(ctx, client, form.URL, pdfPath, cfg); err != nil {
		return "", false, fmt.Errorf("downloading %s: %w", Slug(form), err)
	}

	form.PDFPath = pdfPath
	if err := writeMetadata(form, MetadataPath(cfg.DataDir, form)); err != nil {
		fmt.Fprintf(w, "  warning: metadata write failed: %v\n", err)
	}

	return pdfPath, false, nil
}

// downloadFile fetches url to destPath using a temporary file. It sets
// User-Agent, requests PDF via the Accept header, and retries HTTP 429.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.AcquisitionConfig) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMetadata writes a Form record to a YAML file.
func writeMetadata(form types.Form, path string) error {
	data, err := yaml.Marshal(form)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a Form record from a YAML file.
func ReadMetadata(path string) (types.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Form{}, err
	}
	var form types.Form
	if err := yaml.Unmarshal(data, &form); err != nil {
		return types.Form{}, err
	}
	return form, nil
}
