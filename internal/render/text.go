package render

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func Text(t Table) string {
	return newWriter(t).Render()
}

func Markdown(t Table) string {
	return newWriter(t).RenderMarkdown()
}

func CSV(t Table) string {
	return newWriter(t).RenderCSV()
}

func newWriter(t Table) table.Writer {
	w := table.NewWriter()
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	w.SetStyle(style)

	header := make(table.Row, len(t.Header))
	for i, name := range t.Header {
		header[i] = name
	}
	w.AppendHeader(header)

	for _, cells := range t.Rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		w.AppendRow(row)
	}
	return w
}
