// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/forms-engine/pkg/types"
)

// ExportJSON writes every indexed form to dataDir/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dataDir, indexDir, "export.json"), data, 0o644)
}

// ExportYAML writes every indexed form to dataDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dataDir, indexDir, "export.yaml"), data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]types.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT form_name, title, url, summary, fields_count, summary_path, raw_text_path
		FROM forms ORDER BY form_name`)
	if err != nil {
		return nil, fmt.Errorf("querying forms: %w", err)
	}
	defer rows.Close()

	var entries []types.IndexEntry
	for rows.Next() {
		var e types.IndexEntry
		var title, url, summary, summaryPath, rawPath sql.NullString
		if err := rows.Scan(&e.FormName, &title, &url, &summary, &e.FieldsCount, &summaryPath, &rawPath); err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		e.Title = title.String
		e.URL = url.String
		e.Summary = summary.String
		e.SummaryPath = summaryPath.String
		e.RawTextPath = rawPath.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
