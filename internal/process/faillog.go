// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/forms-engine/pkg/types"
)

// FailureLogFile is the append-only record of per-form failures, kept
// across runs so failed forms can be retried by hand later.
const FailureLogFile = "missed_forms.txt"

// FailureLog appends form failures to dataDir/missed_forms.txt.
type FailureLog struct {
	path string
}

// NewFailureLog returns a failure log rooted at dataDir. The file is
// created on first write.
func NewFailureLog(dataDir string) *FailureLog {
	return &FailureLog{path: filepath.Join(dataDir, FailureLogFile)}
}

// Record appends one failure line: id|form|url|stage|reason. Newlines in
// the reason are flattened so the log stays one line per failure.
func (l *FailureLog) Record(form types.Form, stage types.Stage, reason error) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening failure log: %w", err)
	}
	defer f.Close()

	msg := strings.ReplaceAll(reason.Error(), "\n", " ")
	_, err = fmt.Fprintf(f, "%s|%s|%s|%s|%s\n", form.ID, form.FormName, form.URL, stage, msg)
	if err != nil {
		return fmt.Errorf("writing failure log: %w", err)
	}
	return nil
}

// Path returns the log file location.
func (l *FailureLog) Path() string {
	return l.path
}
