// Package render builds the HTML fragments plugins embed into assignment pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

const solutionSheetTemplate = `
{{- define "action" -}}
<a class="solutionsheet-action" href="{{.URL}}" data-method="post" data-show="{{.Show}}" data-confirm="{{.Confirm}}">{{.Label}}</a>
{{- end -}}
<h3>{{.Heading}}</h3>
<div class="box generalbox">
{{- if .ShowFiles}}
<div class="{{.FilesClass}}"><ul>
{{- range .Files}}
<li><a href="{{.URL}}">{{.Name}}</a></li>
{{- end}}
</ul></div>
{{- end}}
{{- with .HideAction}}
<div class="solutionshowhide">{{template "action" .}}</div>
{{- end}}
{{- if .Notice}}
<div class="solutionshowhide">{{.Notice}}{{with .ShowAction}}{{template "action" .}}{{end}}</div>
{{- end}}
{{- if .Message}}
<p>{{.Message}}</p>
{{- end}}
</div>
`

// File is a link to one solution sheet.
type File struct {
	Name string
	URL  string
}

// Action is the confirmable show or hide link offered to release-capable users.
type Action struct {
	Show    bool
	URL     string
	Label   string
	Confirm string
}

// SolutionSheet is everything the solution sheet fragment shows.
type SolutionSheet struct {
	Heading    string
	Files      []File
	ShowFiles  bool
	GreyedOut  bool
	HideAction *Action
	Notice     string
	ShowAction *Action
	Message    string
}

type solutionSheetData struct {
	Heading    string
	Files      []File
	ShowFiles  bool
	FilesClass string
	HideAction *Action
	Notice     template.HTML
	ShowAction *Action
	Message    template.HTML
}

// Renderer turns view models into HTML fragments.
type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

// NewRenderer compiles the fragment templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("solutionsheet").Parse(solutionSheetTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse solution sheet template: %w", err)
	}

	policy := bluemonday.UGCPolicy()
	policy.AllowElements("strong", "em", "br", "span")

	return &Renderer{tmpl: tmpl, policy: policy}, nil
}

// SolutionSheet renders the solution sheet box. Notice and Message may carry
// inline markup from the catalog; it is sanitised before rendering.
func (r *Renderer) SolutionSheet(view SolutionSheet) (string, error) {
	classes := "solutionsheet"
	if view.GreyedOut {
		classes += " greyedout"
	}

	data := solutionSheetData{
		Heading:    view.Heading,
		Files:      view.Files,
		ShowFiles:  view.ShowFiles,
		FilesClass: classes,
		HideAction: view.HideAction,
		Notice:     template.HTML(r.policy.Sanitize(view.Notice)),
		ShowAction: view.ShowAction,
		Message:    template.HTML(r.policy.Sanitize(view.Message)),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render solution sheet: %w", err)
	}
	return buf.String(), nil
}
