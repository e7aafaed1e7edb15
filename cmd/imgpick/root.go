package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/imgpick/internal/logging"
	"github.com/nikbrunner/imgpick/internal/model"
	"github.com/nikbrunner/imgpick/internal/objstore"
	"github.com/nikbrunner/imgpick/internal/source"
	"github.com/nikbrunner/imgpick/internal/storage"
	"github.com/nikbrunner/imgpick/internal/tui"
	"github.com/nikbrunner/imgpick/internal/upload"
)

// options holds values shared by every command.
type options struct {
	configPath string
	logLevel   string

	// root only
	sourceDir string
	sourceURL string
	limit     int

	config *storage.Config
}

// load resolves the config: file, then IMGPICK_* env, then flags.
func (o *options) load() error {
	path := o.configPath
	if path == "" {
		var err error
		if path, err = storage.DefaultConfigFilePath(); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}

	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.Getenv)

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.sourceDir != "" {
		cfg.Source.Dir = o.sourceDir
		cfg.Source.RemoteURL = ""
	}
	if o.sourceURL != "" {
		cfg.Source.RemoteURL = o.sourceURL
	}
	if o.limit > 0 {
		cfg.Source.Limit = o.limit
	}

	o.config = cfg
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "imgpick",
		Short: "Pick, preview and upload images from the terminal",
		Long: `imgpick loads images from a photo folder or a web page, lets you select
them, preview a filter and add a description, then uploads the selection to
an object store and records each upload in a metadata collection.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts.config)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/imgpick/config.json)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	cmd.Flags().StringVar(&opts.sourceDir, "dir", "", "photo folder to load images from")
	cmd.Flags().StringVar(&opts.sourceURL, "url", "", "web page to load images from")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum number of images to load")

	cmd.AddCommand(
		newUploadCmd(opts),
		newHistoryCmd(opts),
		newFiltersCmd(),
	)

	return cmd
}

// sourceFor picks the remote page when one is configured.
func sourceFor(cfg storage.SourceConfig) source.Source {
	if cfg.RemoteURL != "" {
		return source.RemoteSource{PageURL: cfg.RemoteURL}
	}
	return source.DeviceSource{Dir: cfg.Dir, Limit: cfg.Limit}
}

// openBackends opens the object and document stores and wires an orchestrator
// over them. The caller closes the document store.
func openBackends(ctx context.Context, cfg *storage.Config) (*upload.Orchestrator, storage.DocumentStore, error) {
	objects, err := objstore.Open(ctx, cfg.ObjectStore)
	if err != nil {
		return nil, nil, fmt.Errorf("open object store: %w", err)
	}

	docs, err := storage.OpenDocumentStore(ctx, cfg.Documents)
	if err != nil {
		return nil, nil, fmt.Errorf("open document store: %w", err)
	}

	orch := upload.NewOrchestrator(upload.OrchestratorParams{
		Objects:    objects,
		Documents:  docs,
		Collection: cfg.Documents.Collection,
		Prefix:     cfg.ObjectStore.Prefix,
	})
	return orch, docs, nil
}

// runTUI runs the full interactive TUI. Logs go to the log file because the
// terminal belongs to the program.
func runTUI(ctx context.Context, cfg *storage.Config) error {
	logFile, err := logging.SetupFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	orch, docs, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer docs.Close()

	src := sourceFor(cfg.Source)
	app := tui.NewApp(tui.AppParams{
		Store: model.NewStore(),
		Load: func(ctx context.Context) ([]model.ImageRecord, error) {
			return source.Load(ctx, src, cfg.Source.Limit)
		},
		Uploader: orch,
		Context:  ctx,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
