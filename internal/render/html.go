package render

import (
	"html/template"
	"strings"
)

var tableTemplate = template.Must(template.New("table").Parse(
	`<table id="table" class="table table-md table-pin-rows"><thead><tr>` +
		`{{range .Header}}<th>{{.}}</th>{{end}}` +
		`</tr></thead><tbody>` +
		`{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}` +
		`</tbody></table>`,
))

func HTML(table Table) (string, error) {
	var sb strings.Builder
	if err := tableTemplate.Execute(&sb, table); err != nil {
		return "", err
	}
	return sb.String(), nil
}
