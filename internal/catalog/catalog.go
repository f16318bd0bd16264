// Package catalog builds and loads the VA form catalog that drives the
// processing pipeline. The catalog lives in a single JSON file using the
// VA Forms API wire shape and can be produced by the API fetcher, the
// find-forms scraper, or by hand.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/forms-engine/pkg/types"
)

// document is the wire shape of va_forms.json, matching the VA Forms API.
type document struct {
	Data []entry `json:"data"`
}

type entry struct {
	ID         string     `json:"id"`
	Attributes attributes `json:"attributes"`
}

type attributes struct {
	FormName string `json:"form_name"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

// Load reads a catalog file and returns the forms whose source URL points
// at a PDF. Entries without a usable URL are dropped, matching the
// pipeline's PDF-only scope.
func Load(path string) ([]types.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	var forms []types.Form
	for _, e := range doc.Data {
		if !strings.HasSuffix(strings.ToLower(e.Attributes.URL), ".pdf") {
			continue
		}
		name := e.Attributes.FormName
		if name == "" {
			name = e.ID
		}
		id := e.ID
		if id == "" {
			id = name
		}
		forms = append(forms, types.Form{
			ID:       id,
			FormName: name,
			Title:    e.Attributes.Title,
			URL:      e.Attributes.URL,
		})
	}
	return forms, nil
}

// Save writes forms to path in the VA Forms API wire shape, so a saved
// catalog round-trips through Load.
func Save(path string, forms []types.Form) error {
	doc := document{Data: make([]entry, 0, len(forms))}
	for _, f := range forms {
		doc.Data = append(doc.Data, entry{
			ID: f.ID,
			Attributes: attributes{
				FormName: f.FormName,
				Title:    f.Title,
				URL:      f.URL,
			},
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating catalog directory %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Resume slices forms so processing restarts at the form whose ID or
// FormName equals startID, inclusive. An empty startID returns forms
// unchanged; an unknown startID is an error so a typo cannot silently
// skip the whole catalog.
func Resume(forms []types.Form, startID string) ([]types.Form, error) {
	if startID == "" {
		return forms, nil
	}
	for i, f := range forms {
		if f.ID == startID || f.FormName == startID {
			return forms[i:], nil
		}
	}
	return nil, fmt.Errorf("start id %q not found in catalog", startID)
}
