package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/imgpick/internal/filter"
	"github.com/nikbrunner/imgpick/internal/logging"
	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/upload"
)

var errUploadFailed = errors.New("some uploads failed")

func newUploadCmd(opts *options) *cobra.Command {
	var (
		filterID    string
		description string
	)

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files without the TUI",
		Long: `Upload one or more local images with a shared filter and description.
Each successful upload is recorded in the configured metadata collection.`,
		Example: `  imgpick upload beach.jpg sunset.png --filter sepia --description "Holiday"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)

			if _, ok := filter.Lookup(filterID); !ok {
				return fmt.Errorf("unknown filter %q (see imgpick filters)", filterID)
			}

			records := make([]model.ImageRecord, 0, len(args))
			for i, arg := range args {
				path, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", arg, err)
				}
				if _, err := os.Stat(path); err != nil {
					return err
				}
				records = append(records, model.NewImageRecord(model.NewImageRecordParams{
					Index: i,
					URL:   path,
					Name:  filepath.Base(path),
				}))
			}

			store := model.NewStore()
			store.SetGalleryImages(records)
			store.ToggleMultiSelectMode()
			for _, r := range records {
				store.SelectImage(r.ID)
				store.SetImageDescription(r.ID, description)
			}
			store.SetCurrentFilter(filterID)

			ctx := cmd.Context()
			orch, docs, err := openBackends(ctx, cfg)
			if err != nil {
				return err
			}
			defer docs.Close()

			out := cmd.OutOrStdout()
			printer := upload.ReporterFuncs{
				OnFinished: func(o upload.Outcome) {
					if o.Status == model.StatusSuccess {
						fmt.Fprintf(out, "✓ %s  %s\n", o.Name, o.URL)
					} else {
						fmt.Fprintf(out, "✗ %s  %s\n", o.Name, o.Err)
					}
				},
			}

			jobs := upload.Jobs(store)
			rep := upload.Tee(upload.StoreReporter{Store: model.NewSyncStore(store)}, printer)
			summary := orch.Run(ctx, rep, jobs)

			fmt.Fprintf(out, "\nUploaded %d of %d image(s)\n", summary.Succeeded, len(jobs))
			if summary.Failed > 0 {
				return fmt.Errorf("%w: %d of %d", errUploadFailed, summary.Failed, len(jobs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filterID, "filter", "f", model.DefaultFilter, "filter to apply before uploading")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description stored with every upload")

	return cmd
}
