// Package render turns migration script templates into executable SQL text.
//
// Scripts are Go text/template files: variable interpolation and conditional
// blocks are supported, with values supplied from configuration. Rendering
// is a pure function of the file content and the variable map.
package render

import (
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

// Renderer renders migration scripts from a filesystem with a fixed
// variable set.
type Renderer struct {
	fsys fs.FS
	vars map[string]string
}

// New creates a renderer over fsys. vars may be nil; missing variables
// render as empty strings rather than failing, so scripts stay portable
// across environments that define different variable sets.
func New(fsys fs.FS, vars map[string]string) *Renderer {
	if vars == nil {
		vars = map[string]string{}
	}
	return &Renderer{fsys: fsys, vars: vars}
}

// Render reads the named script from the filesystem and executes it as a
// template with the configured variables.
func (r *Renderer) Render(filename string) (string, error) {
	data, err := fs.ReadFile(r.fsys, filename)
	if err != nil {
		return "", fmt.Errorf("read migration script %s: %w", filename, err)
	}
	tmpl, err := template.New(filename).Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("parse migration script %s: %w", filename, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, r.vars); err != nil {
		return "", fmt.Errorf("render migration script %s: %w", filename, err)
	}
	return sb.String(), nil
}
