package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/forms-engine/pkg/types"
)

func TestAppendConsolidated(t *testing.T) {
	path := ConsolidatedPath(t.TempDir())

	first := types.IndexEntry{FormName: "VA-1", Title: "First", Summary: "one"}
	if err := AppendConsolidated(path, first); err != nil {
		t.Fatalf("AppendConsolidated: %v", err)
	}

	second := types.IndexEntry{FormName: "VA-2", Title: "Second", Summary: "two"}
	if err := AppendConsolidated(path, second); err != nil {
		t.Fatalf("AppendConsolidated: %v", err)
	}

	entries, err := ReadConsolidated(path)
	if err != nil {
		t.Fatalf("ReadConsolidated: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	// Re-running a form replaces its entry without touching others.
	updated := types.IndexEntry{FormName: "VA-1", Title: "First", Summary: "one, updated"}
	if err := AppendConsolidated(path, updated); err != nil {
		t.Fatal(err)
	}
	entries, err = ReadConsolidated(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries after replace, want 2", len(entries))
	}
	if entries[0].Summary != "one, updated" {
		t.Errorf("entry not replaced: %+v", entries[0])
	}
	if entries[1].Summary != "two" {
		t.Errorf("unrelated entry changed: %+v", entries[1])
	}
}

func TestReadConsolidated_MissingIsEmpty(t *testing.T) {
	entries, err := ReadConsolidated(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("ReadConsolidated: %v", err)
	}
	if entries != nil {
		t.Errorf("got %v, want nil", entries)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.IndexConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(name, title, summary, rawText string, summaryVec, rawVec []float32) Record {
	return Record{
		Entry: types.IndexEntry{
			FormName:    name,
			Title:       title,
			URL:         "https://example.com/" + name + ".pdf",
			Summary:     summary,
			FieldsCount: 2,
			SummaryPath: "summaries/" + name + ".txt",
			RawTextPath: "summaries/" + name + "_raw.txt",
		},
		RawText:          rawText,
		SummaryEmbedding: summaryVec,
		RawEmbedding:     rawVec,
	}
}

func TestStore_UpsertAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("VA-1", "Health Benefits", "Apply for health care.", "raw text", []float32{1, 0}, []float32{0, 1})
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1 (upsert replaces)", n)
	}
}

func TestStore_SearchText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []Record{
		testRecord("VA-HEALTH", "Application for Health Benefits", "Use to enroll in VA health care.", "health benefits enrollment", nil, nil),
		testRecord("VA-BURIAL", "Burial Benefits Claim", "Claim burial allowance.", "burial allowance claim", nil, nil),
	}
	for _, rec := range records {
		if err := s.Upsert(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.SearchText(ctx, "burial", 0)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].FormName != "VA-BURIAL" {
		t.Errorf("matched %s", results[0].FormName)
	}

	if _, err := s.SearchText(ctx, "", 0); err == nil {
		t.Error("expected error for empty query")
	}
}

// fixedEmbedder returns the same vector for every input.
type fixedEmbedder struct {
	vec []float32
}

func (f fixedEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	return f.vec, nil
}

func TestStore_SearchSemantic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// VA-A's summary vector aligns with the query; VA-B's is orthogonal.
	// VA-C has only a raw vector, which should be used as fallback.
	// VA-D has no vectors and must be excluded.
	records := []Record{
		testRecord("VA-A", "Aligned", "a", "raw", []float32{1, 0}, nil),
		testRecord("VA-B", "Orthogonal", "b", "raw", []float32{0, 1}, nil),
		testRecord("VA-C", "RawOnly", "c", "raw", nil, []float32{0.9, 0.1}),
		testRecord("VA-D", "NoVectors", "d", "raw", nil, nil),
	}
	for _, rec := range records {
		if err := s.Upsert(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.SearchSemantic(ctx, fixedEmbedder{vec: []float32{1, 0}}, "query", 10)
	if err != nil {
		t.Fatalf("SearchSemantic: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].FormName != "VA-A" {
		t.Errorf("top result = %s, want VA-A", results[0].FormName)
	}
	if results[1].FormName != "VA-C" {
		t.Errorf("second result = %s, want VA-C (raw fallback)", results[1].FormName)
	}
	if results[2].FormName != "VA-B" {
		t.Errorf("last result = %s, want VA-B", results[2].FormName)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_Export(t *testing.T) {
	dataDir := t.TempDir()
	s, err := NewStore(types.IndexConfig{DataDir: dataDir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.Upsert(ctx, testRecord("VA-1", "One", "first", "raw", nil, nil)); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportJSON(ctx); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if err := s.ExportYAML(ctx); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, "index", "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []types.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("export.json parse: %v", err)
	}
	if len(entries) != 1 || entries[0].FormName != "VA-1" {
		t.Errorf("export entries = %+v", entries)
	}
}
