package duckdeskctl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"

	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/render"
)

const (
	outputText     = "text"
	outputMarkdown = "markdown"
	outputCSV      = "csv"
	outputJSON     = "json"
)

func validOutput(output string) bool {
	switch output {
	case outputText, outputMarkdown, outputCSV, outputJSON:
		return true
	}
	return false
}

func outputOf(cmd *cobra.Command) string {
	output, _ := cmd.Flags().GetString("output")
	return output
}

// writeTable prints t in the selected format; json prints raw unchanged.
func writeTable(cmd *cobra.Command, t render.Table, raw []byte) error {
	w := cmd.OutOrStdout()
	var body string
	switch outputOf(cmd) {
	case outputJSON:
		return writeRawJSON(w, raw)
	case outputMarkdown:
		body = render.Markdown(t)
	case outputCSV:
		body = render.CSV(t)
	default:
		body = render.Text(t)
	}
	_, err := fmt.Fprintln(w, body)
	return err
}

func writeRawJSON(w io.Writer, raw []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(raw), "", "  "); err != nil {
		_, err = w.Write(raw)
		return err
	}
	_, err := fmt.Fprintln(w, out.String())
	return err
}

func renderTree(root *fsindex.Node) string {
	if root == nil {
		return ""
	}
	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedLight)
	appendNode(l, root)
	return l.Render()
}

func appendNode(l list.Writer, node *fsindex.Node) {
	if node.IsDir() {
		l.AppendItem(node.Name + "/")
	} else {
		l.AppendItem(node.Name)
	}
	if len(node.Children) == 0 {
		return
	}
	l.Indent()
	for _, child := range node.Children {
		appendNode(l, child)
	}
	l.UnIndent()
}
