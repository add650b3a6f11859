package fsindex

import (
	"html/template"
	"strings"
)

const (
	folderIcon = `<svg xmlns="http://www.w3.org/2000/svg" class="h-4 w-4" fill="none" viewBox="0 0 24 24" stroke="currentColor">` +
		`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M3 7v10a2 2 0 002 2h14a2 2 0 002-2V9a2 2 0 00-2-2h-6l-2-2H5a2 2 0 00-2 2z" /></svg>`
	queryIcon = `<svg xmlns="http://www.w3.org/2000/svg" class="h-4 w-4" fill="none" viewBox="0 0 24 24" stroke="currentColor">` +
		`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M9 12h6m-6 4h6m2 5H7a2 2 0 01-2-2V5a2 2 0 012-2h5.586a1 1 0 01.707.293l5.414 5.414a1 1 0 01.293.707V19a2 2 0 01-2 2z" /></svg>`
	dataIcon = `<svg xmlns="http://www.w3.org/2000/svg" class="h-4 w-4" fill="none" viewBox="0 0 24 24" stroke="currentColor">` +
		`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M4 7v10c0 2 1 3 3 3h10c2 0 3-1 3-3V7c0-2-1-3-3-3H7c-2 0-3 1-3 3z" />` +
		`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M9 17v-6" />` +
		`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M12 17v-3" />` +
		`<path stroke-linecap="round" stroke-linejoin="round" stroke-width="2" d="M15 17v-5" /></svg>`
)

var explorerTemplate = template.Must(template.New("root").Parse(
	`{{define "folder"}}` + folderIcon + `{{end}}` +
		`{{define "query"}}` + queryIcon + `{{end}}` +
		`{{define "data"}}` + dataIcon + `{{end}}` +
		`{{define "node"}}<li>` +
		`{{if .IsDir}}<details><summary>{{template "folder"}}{{.Name}}</summary><ul class="menu ml-4">{{range .Children}}{{template "node" .}}{{end}}</ul></details>` +
		`{{else if .IsQuery}}<a class="sql-file" data-path="{{.Path}}">{{template "query"}}{{.Name}}</a>` +
		`{{else}}<a class="data-file" data-path="{{.Path}}">{{template "data"}}{{.Name}}</a>{{end}}` +
		`</li>{{end}}` +
		`<li><details open><summary>{{template "folder"}}{{.Name}}</summary><ul class="menu">{{range .Children}}{{template "node" .}}{{end}}</ul></details></li>`,
))

// HTML renders the explorer sidebar markup for a finished tree.
func HTML(root *Node) (string, error) {
	var sb strings.Builder
	if err := explorerTemplate.Execute(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}
