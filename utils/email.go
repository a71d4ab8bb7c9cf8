package utils

import (
	"bytes"
	"fmt"
	"html/template"
)

// RenderEmailTemplate executes an HTML template with the provided data.
// Callers pass the template source itself so user-supplied values get
// escaped instead of being spliced into markup by hand.
func RenderEmailTemplate(tpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	var tplBody bytes.Buffer
	if err := t.Execute(&tplBody, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return tplBody.String(), nil
}
