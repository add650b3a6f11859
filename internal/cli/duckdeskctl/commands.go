package duckdeskctl

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/duckdesk/duckdesk/internal/datasets"
	"github.com/duckdesk/duckdesk/internal/fsindex"
	"github.com/duckdesk/duckdesk/internal/render"
)

type filesPayload struct {
	Root  *fsindex.Node `json:"root"`
	Files int           `json:"files"`
}

func newStatusCommand(c *client, name, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := c.get(cmd.Context(), path, nil)
			if err != nil {
				return err
			}
			return writeRawJSON(cmd.OutOrStdout(), raw)
		},
	}
}

func newQueryCommand(c *client) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "query [sql]",
		Short: "Run SQL in a fresh session and print the result table",
		Example: `  duckdeskctl query "SELECT * FROM 'data/etfs.csv'"
  duckdeskctl query --file queries/daily.sql -o markdown`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlText, err := querySource(args, file)
			if err != nil {
				return err
			}
			raw, err := c.postJSON(cmd.Context(), "/v1/query", map[string]string{"sql": sqlText})
			if err != nil {
				return err
			}
			var table render.Table
			if err := json.Unmarshal(raw, &table); err != nil {
				return fmt.Errorf("decode query response: %w", err)
			}
			return writeTable(cmd, table, raw)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read SQL from a file")
	return cmd
}

func querySource(args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", usageError{fmt.Errorf("pass SQL or --file, not both")}
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read query file: %w", err)
		}
		return string(data), nil
	default:
		return "", usageError{fmt.Errorf("sql argument or --file is required")}
	}
}

func newFilesCommand(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "files [root]",
		Short: "Show the query and data files under a workspace directory",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if len(args) == 1 {
				query.Set("root", args[0])
			}
			return printTree(cmd, c, "/v1/files", query)
		},
	}
}

func newRemoteCommand(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "remote [prefix]",
		Short: "Show datasets in the configured object store",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if len(args) == 1 {
				query.Set("prefix", args[0])
			}
			return printTree(cmd, c, "/v1/remote/files", query)
		},
	}
}

func printTree(cmd *cobra.Command, c *client, path string, query url.Values) error {
	raw, err := c.get(cmd.Context(), path, query)
	if err != nil {
		return err
	}
	if outputOf(cmd) == outputJSON {
		return writeRawJSON(cmd.OutOrStdout(), raw)
	}
	var payload filesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTree(payload.Root))
	return err
}

func newCatCommand(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a workspace text file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := c.get(cmd.Context(), "/v1/files/content", url.Values{"path": {args[0]}})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
}

func newPreviewCommand(c *client) *cobra.Command {
	var limit int
	var run bool
	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Print (or run) the SELECT that previews a dataset",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var preview struct {
				Path string `json:"path"`
				SQL  string `json:"sql"`
			}
			query := url.Values{"path": {args[0]}, "limit": {strconv.Itoa(limit)}}
			if err := c.getJSON(cmd.Context(), "/v1/datasets/preview", query, &preview); err != nil {
				return err
			}
			if !run {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), preview.SQL)
				return err
			}
			raw, err := c.postJSON(cmd.Context(), "/v1/query", map[string]string{"sql": preview.SQL})
			if err != nil {
				return err
			}
			var table render.Table
			if err := json.Unmarshal(raw, &table); err != nil {
				return fmt.Errorf("decode query response: %w", err)
			}
			return writeTable(cmd, table, raw)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to preview (0 for all)")
	cmd.Flags().BoolVar(&run, "run", false, "execute the preview query")
	return cmd
}

func newSchemaCommand(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <path>",
		Short: "Describe the columns of a parquet dataset",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := c.get(cmd.Context(), "/v1/datasets/schema", url.Values{"path": {args[0]}})
			if err != nil {
				return err
			}
			var schema datasets.Schema
			if err := json.Unmarshal(raw, &schema); err != nil {
				return fmt.Errorf("decode schema response: %w", err)
			}
			table := render.Table{Header: []string{"column", "physical", "logical", "optional", "repeated"}}
			for _, column := range schema.Columns {
				table.Rows = append(table.Rows, []string{
					column.Name,
					column.PhysicalType,
					column.LogicalType,
					strconv.FormatBool(column.Optional),
					strconv.FormatBool(column.Repeated),
				})
			}
			if outputOf(cmd) == outputText {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows, %d row groups)\n", strings.TrimSpace(schema.Path), schema.Rows, schema.RowGroups)
			}
			return writeTable(cmd, table, raw)
		},
	}
}
