package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/imgpick/internal/culler"
	"github.com/nikbrunner/imgpick/internal/exporter"
	"github.com/nikbrunner/imgpick/internal/logging"
	"github.com/nikbrunner/imgpick/internal/picker"
	"github.com/nikbrunner/imgpick/internal/search"
	"github.com/nikbrunner/imgpick/internal/storage"
)

var errDeadUploads = errors.New("dead uploads found")

// listHistory reads every upload document of the configured collection.
func listHistory(ctx context.Context, cfg *storage.Config) ([]storage.Document, error) {
	docs, err := storage.OpenDocumentStore(ctx, cfg.Documents)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	defer docs.Close()

	list, err := docs.ListDocuments(ctx, cfg.Documents.Collection)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return list, nil
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or export past uploads",
		Long: `List the upload history kept in the metadata collection.

Formats: table (default), yaml, html and parquet. html and parquet are
written to ~/Downloads unless --output is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)

			docs, err := listHistory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), docs, format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "output format: table, yaml, html or parquet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of the default destination")

	cmd.AddCommand(newVerifyCmd(opts), newPickCmd(opts))
	return cmd
}

func writeHistory(stdout io.Writer, docs []storage.Document, format, output string) error {
	switch format {
	case "table":
		if len(docs) == 0 {
			fmt.Fprintln(stdout, "No uploads yet")
			return nil
		}
		t := newTable("Name", "Filter", "Uploaded", "URL")
		for _, d := range docs {
			t.Row(d.Name, d.Filter, d.CreatedAt.Local().Format("2006-01-02 15:04"), d.URL)
		}
		return writeTo(stdout, output, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, t.Render())
			return err
		})

	case "yaml":
		return writeTo(stdout, output, func(w io.Writer) error {
			return exporter.ExportYAML(w, docs, time.Now())
		})

	case "html", "parquet":
		path := output
		if path == "" {
			var err error
			if path, err = exporter.DefaultExportPath(format); err != nil {
				return fmt.Errorf("export path: %w", err)
			}
		}
		err := writeTo(stdout, path, func(w io.Writer) error {
			if format == "html" {
				_, err := io.WriteString(w, exporter.ExportHTML(docs))
				return err
			}
			return exporter.ExportParquet(w, docs)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d upload(s) to %s\n", len(docs), path)
		return nil

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// writeTo runs fn against path, or against stdout when path is empty.
func writeTo(stdout io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newVerifyCmd(opts *options) *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		exclude     []string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that uploaded images are still reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)

			docs, err := listHistory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No uploads yet")
				return nil
			}

			stderr := cmd.ErrOrStderr()
			results := culler.CheckURLs(cmd.Context(), docs, culler.Options{
				Concurrency:    concurrency,
				Timeout:        timeout,
				ExcludeDomains: exclude,
				OnProgress: func(completed, total int) {
					fmt.Fprintf(stderr, "\rChecking %d/%d", completed, total)
				},
			})
			fmt.Fprintln(stderr)

			return reportVerify(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "parallel checks")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "domains whose 404s are not counted as dead")

	return cmd
}

func reportVerify(w io.Writer, results []culler.Result) error {
	counts := map[culler.Status]int{}
	t := newTable("Status", "Name", "Detail")
	for _, r := range results {
		counts[r.Status]++
		if r.Status == culler.Healthy {
			continue
		}
		detail := r.Error
		if r.StatusCode != 0 {
			detail = fmt.Sprintf("HTTP %d", r.StatusCode)
		}
		t.Row(r.Status.String(), r.Document.Name, detail)
	}

	if counts[culler.Dead]+counts[culler.Unreachable] > 0 {
		fmt.Fprintln(w, t.Render())
	}
	fmt.Fprintf(w, "%d healthy, %d dead, %d unreachable\n",
		counts[culler.Healthy], counts[culler.Dead], counts[culler.Unreachable])

	if counts[culler.Dead] > 0 {
		return fmt.Errorf("%w: %d", errDeadUploads, counts[culler.Dead])
	}
	return nil
}

func newPickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pick [query]",
		Short: "Fuzzy-find a past upload and copy its URL",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			// The picker owns the terminal.
			logFile, err := logging.SetupFile(cfg.LogFile, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer logFile.Close()

			docs, err := listHistory(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := search.FuzzySearchDocuments(docs, query)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No uploads found for '%s'\n", query)
				return nil
			}

			var selected *storage.Document
			if len(results) == 1 {
				selected = results[0].Document
			} else {
				p := tea.NewProgram(picker.New(results, query), tea.WithContext(cmd.Context()))
				final, err := p.Run()
				if err != nil {
					return fmt.Errorf("run picker: %w", err)
				}
				fp := final.(picker.Picker)
				if fp.Cancelled() {
					return nil
				}
				selected = fp.Selected()
			}
			if selected == nil {
				return nil
			}

			if err := clipboard.WriteAll(selected.URL); err != nil {
				fmt.Fprintln(out, selected.URL)
				return fmt.Errorf("copy URL: %w", err)
			}
			fmt.Fprintf(out, "Copied: %s\n", selected.URL)
			return nil
		},
	}
}
