package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"docxml/config"
	"docxml/describe"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Vars       map[string]string
	SourceFile string
	Paragraphs int
	Images     int
}

func expandTemplate(d *describe.Description, src string, name config.TemplateFieldName, field string) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      d.Title,
		Vars:       d.Vars,
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Paragraphs: len(d.Paragraphs),
		Images:     len(d.Images),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
