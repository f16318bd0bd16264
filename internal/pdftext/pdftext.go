// Package pdftext extracts plain text and fillable-field descriptors from
// form PDFs.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/forms-engine/pkg/types"
)

// maxFields caps how many field descriptors are returned; form-field
// context beyond this adds nothing to the summary prompt.
const maxFields = 20

// Result holds everything extracted from one PDF.
type Result struct {
	// Text is the concatenated plain text of all parseable pages.
	Text string

	// Pages is the page count reported by the document.
	Pages int

	// Fields lists fillable fields from the AcroForm dictionary, capped
	// at maxFields.
	Fields []types.FormField

	// FieldsTotal is the uncapped field count.
	FieldsTotal int
}

// Extract reads the PDF at path and returns its text and field
// descriptors. Pages that fail to parse are skipped; Extract errors only
// when the document cannot be opened or yields no text at all.
// The pdf library panics on some malformed documents, so the whole pass
// runs under a recover.
func Extract(path string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res.Pages = reader.NumPage()

	var pages []string
	for i := 1; i <= res.Pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil || strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}

	res.Text = strings.Join(pages, "\n\n")
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, fmt.Errorf("no text extracted from %s", path)
	}

	res.Fields, res.FieldsTotal = collectFields(reader)
	return res, nil
}

// collectFields walks the AcroForm field tree under the document catalog.
// A missing or malformed AcroForm is not an error; forms without fillable
// fields are common.
func collectFields(reader *pdf.Reader) ([]types.FormField, int) {
	defer func() {
		// Field dictionaries are the most loosely structured part of
		// real-world VA PDFs; a panic here must not discard the text.
		recover()
	}()

	fields := reader.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.Kind() != pdf.Array {
		return nil, 0
	}

	var out []types.FormField
	total := 0
	var walk func(v pdf.Value)
	walk = func(v pdf.Value) {
		for i := 0; i < v.Len(); i++ {
			node := v.Index(i)
			if node.Kind() != pdf.Dict {
				continue
			}

			if kids := node.Key("Kids"); kids.Kind() == pdf.Array {
				walk(kids)
				continue
			}

			name := node.Key("T").Text()
			if name == "" {
				continue
			}
			total++
			if len(out) >= maxFields {
				continue
			}

			label := node.Key("TU").Text()
			if label == "" {
				label = name
			}
			out = append(out, types.FormField{
				Name:  name,
				Label: label,
				Type:  node.Key("FT").Name(),
			})
		}
	}
	walk(fields)
	return out, total
}

// FieldsContext renders field descriptors as prompt context for the
// summarization call. Empty when the form has no fillable fields.
func FieldsContext(fields []types.FormField) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Form fields found:\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "- %s (type: %s)\n", f.Label, f.Type)
	}
	return b.String()
}
