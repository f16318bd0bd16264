// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/forms-engine/internal/ai"
)

// SearchResult is one form matched by a text or semantic query.
type SearchResult struct {
	FormName string  `json:"form_name" yaml:"form_name"`
	Title    string  `json:"title" yaml:"title"`
	URL      string  `json:"url" yaml:"url"`
	Summary  string  `json:"summary" yaml:"summary"`
	Score    float64 `json:"score" yaml:"score"`
}

// SearchText runs an FTS5 full-text query over titles, summaries, and raw
// text, ranked by relevance. maxResults of 0 uses the store default.
func (s *Store) SearchText(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT f.form_name, f.title, f.url, f.summary, forms_fts.rank
		FROM forms_fts
		JOIN forms f ON f.rowid = forms_fts.rowid
		WHERE forms_fts MATCH ?
		ORDER BY forms_fts.rank
		LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("full-text query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var title, url, summary sql.NullString
		if err := rows.Scan(&r.FormName, &title, &url, &summary, &r.Score); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Title = title.String
		r.URL = url.String
		r.Summary = summary.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// SearchSemantic embeds the query and ranks forms by cosine similarity
// against their summary embeddings, falling back to the raw-text
// embedding for forms without a summary vector. Forms with no vector at
// all are excluded.
func (s *Store) SearchSemantic(ctx context.Context, embedder ai.Embedder, query string, maxResults int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	queryVec, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT form_name, title, url, summary, summary_embedding, raw_embedding FROM forms`)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var title, url, summary, summaryVec, rawVec sql.NullString
		if err := rows.Scan(&r.FormName, &title, &url, &summary, &summaryVec, &rawVec); err != nil {
			return nil, fmt.Errorf("scanning form: %w", err)
		}
		r.Title = title.String
		r.URL = url.String
		r.Summary = summary.String

		vec, err := unmarshalVector(summaryVec)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", r.FormName, err)
		}
		if vec == nil {
			if vec, err = unmarshalVector(rawVec); err != nil {
				return nil, fmt.Errorf("form %s: %w", r.FormName, err)
			}
		}
		if vec == nil {
			continue
		}

		r.Score = cosineSimilarity(queryVec, vec)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0
// for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
