// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains the two durable views of processed forms: the
// consolidated JSON summary file and an SQLite database with full-text
// and semantic search.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/forms-engine/pkg/types"
)

// ConsolidatedFile is the filename of the consolidated summary index,
// kept stable for downstream consumers.
const ConsolidatedFile = "va_forms_summaries.json"

// ConsolidatedPath returns the consolidated index location under dataDir.
func ConsolidatedPath(dataDir string) string {
	return filepath.Join(dataDir, ConsolidatedFile)
}

// AppendConsolidated adds entry to the consolidated index at path,
// replacing any prior entry for the same form. The file is created on
// first use; entries for other forms are never touched, so re-running a
// single form cannot destroy earlier results.
func AppendConsolidated(path string, entry types.IndexEntry) error {
	entries, err := ReadConsolidated(path)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].FormName == entry.FormName {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling consolidated index: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating index directory %s: %w", dir, err)
		}
	}

	// Write-then-rename so a crash mid-write cannot corrupt the index.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if writeErr != nil {
			return fmt.Errorf("writing consolidated index: %w", writeErr)
		}
		return fmt.Errorf("closing consolidated index: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming consolidated index: %w", err)
	}
	return nil
}

// ReadConsolidated loads the consolidated index; a missing file is an
// empty index, not an error.
func ReadConsolidated(path string) ([]types.IndexEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading consolidated index %s: %w", path, err)
	}

	var entries []types.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing consolidated index %s: %w", path, err)
	}
	return entries, nil
}
