package pdftext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/forms-engine/pkg/types"
)

func TestExtract_MissingFile(t *testing.T) {
	if _, err := Extract(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExtract_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-pdf.pdf")
	if err := os.WriteFile(path, []byte("plain text, no PDF header"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(path); err == nil {
		t.Fatal("expected error for non-PDF content")
	}
}

func TestExtract_TruncatedPDFDoesNotPanic(t *testing.T) {
	// A valid header with a garbage body exercises the recover path.
	path := filepath.Join(t.TempDir(), "truncated.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\n<<"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(path); err == nil {
		t.Fatal("expected error for truncated PDF")
	}
}

func TestFieldsContext(t *testing.T) {
	if got := FieldsContext(nil); got != "" {
		t.Errorf("FieldsContext(nil) = %q, want empty", got)
	}

	fields := []types.FormField{
		{Name: "name", Label: "Veteran's full name", Type: "Tx"},
		{Name: "ssn", Label: "Social Security Number", Type: "Tx"},
		{Name: "agree", Label: "agree", Type: "Btn"},
	}
	got := FieldsContext(fields)
	if !strings.HasPrefix(got, "Form fields found:\n") {
		t.Errorf("missing header: %q", got)
	}
	for _, want := range []string{
		"- Veteran's full name (type: Tx)",
		"- Social Security Number (type: Tx)",
		"- agree (type: Btn)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FieldsContext missing %q in %q", want, got)
		}
	}
}
