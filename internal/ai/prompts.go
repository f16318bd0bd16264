// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"text/template"
)

const cleanupSystemPrompt = "You are a text cleanup assistant. Clean up OCR text while preserving all important information."

// cleanupPromptTmpl is the user prompt for the text cleanup call.
var cleanupPromptTmpl = template.Must(template.New("cleanup").Parse(`Clean up this raw form text by removing OCR artifacts, fixing broken line breaks, standardizing whitespace, and making it more readable. Return only the cleaned text:

{{.Text}}`))

const summarySystemPrompt = "You summarize VA forms for veterans."

// summaryPromptTmpl is the user prompt for the summarization call. The
// fields context is optional and omitted when the form has no fillable
// fields.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an AI assistant. Summarize the following VA PDF form focusing on what this document can accomplish for a veteran. Provide a concise overview.

Form: {{.FormName}} - {{.Title}}
PDF URL: {{.URL}}
{{if .FieldsContext}}
{{.FieldsContext}}{{end}}
Cleaned form text (excerpt):
{{.Excerpt}}`))

func renderCleanupPrompt(text string) (string, error) {
	var buf bytes.Buffer
	err := cleanupPromptTmpl.Execute(&buf, struct{ Text string }{Text: Truncate(text, CleanupInputLimit)})
	return buf.String(), err
}

func renderSummaryPrompt(req SummaryRequest) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		FormName, Title, URL, FieldsContext, Excerpt string
	}{
		FormName:      req.FormName,
		Title:         req.Title,
		URL:           req.URL,
		FieldsContext: req.FieldsContext,
		Excerpt:       Truncate(req.CleanedText, SummaryExcerptLimit),
	})
	return buf.String(), err
}
