package duckdeskctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// usageError marks failures caused by the command line itself.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// Run executes one command and returns the process exit code: 0 on success,
// 1 when the request fails and 2 on usage errors.
func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	root := NewRootCommand(defaults)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "error: %v\n", err)

	var usage usageError
	if errors.As(err, &usage) || strings.HasPrefix(err.Error(), "unknown command") {
		_, _ = fmt.Fprintln(stderr)
		_, _ = fmt.Fprint(stderr, root.UsageString())
		return 2
	}
	return 1
}

func NewRootCommand(defaults Options) *cobra.Command {
	c := &client{}
	var baseURL, apiKey string
	var timeout time.Duration

	root := &cobra.Command{
		Use:   "duckdeskctl",
		Short: "Command-line client for the duckdesk API",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			if !validOutput(output) {
				return usageError{fmt.Errorf("unsupported output %q", output)}
			}
			c.baseURL = strings.TrimRight(baseURL, "/")
			c.apiKey = strings.TrimSpace(apiKey)
			c.http = defaults.HTTPClient
			if c.http == nil {
				c.http = &http.Client{Timeout: timeout}
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return usageError{errors.New("a command is required")}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&baseURL, "base-url", firstNonEmpty(defaults.BaseURL, defaultBaseURL), "duckdesk API base URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key", defaults.APIKey, "API key for authenticated requests")
	root.PersistentFlags().DurationVar(&timeout, "timeout", durationOr(defaults.Timeout, 10*time.Second), "HTTP timeout (e.g. 10s)")
	root.PersistentFlags().StringP("output", "o", outputText, "Output format (text|markdown|csv|json)")

	root.AddCommand(
		newStatusCommand(c, "health", "Check that the API is up", "/v1/health"),
		newStatusCommand(c, "ready", "Check that the API can serve queries", "/v1/ready"),
		newQueryCommand(c),
		newFilesCommand(c),
		newCatCommand(c),
		newPreviewCommand(c),
		newSchemaCommand(c),
		newRemoteCommand(c),
	)
	return root
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
