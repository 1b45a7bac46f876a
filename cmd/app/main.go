package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/ansuz/internal"
	"github.com/starford/ansuz/internal/editor"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/repository"
	"github.com/starford/ansuz/internal/store"
	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openStore opens the document store named by the config, creating its
// parent directory on first use.
func openStore(cfg *internal.Config) (*store.DB, error) {
	if dir := filepath.Dir(cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return store.Open(cfg.Store.Path)
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("import: no files given")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	session := editor.NewSession(repository.NewDocuments(db), repository.NewSettings(db), nil, log)
	imp := importer.New(session, log)

	for _, path := range cmd.Args().Slice() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		doc, err := imp.FromFile(ctx, filepath.Base(path), raw)
		if err != nil {
			return err
		}
		fmt.Printf("imported %s as %q (%s)\n", path, doc.Title, doc.ID)
	}
	return nil
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("export: exactly one document id required")
	}
	id := cmd.Args().First()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := export.NewRegistry(render.New())
	exp, err := registry.Get(cmd.String("format"))
	if err != nil {
		return err
	}

	doc, err := repository.NewDocuments(db).Get(ctx, id)
	if err != nil {
		return err
	}

	data, err := exp.Export(*doc, export.DefaultOptions())
	if err != nil {
		return err
	}

	out := cmd.String("out")
	if out == "" {
		out = export.Filename(doc.Title, exp.Format())
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", out, err)
	}

	fmt.Printf("wrote %s (%s)\n", out, humanize.Bytes(uint64(len(data))))
	return nil
}

func runList(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	docs, err := repository.NewDocuments(db).List(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSIZE\tMODIFIED")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.ID, d.Title, humanize.Bytes(uint64(d.Size)), humanize.Time(d.ModifiedAt))
	}
	return w.Flush()
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := mcpserver.New(repository.NewDocuments(db), export.NewRegistry(render.New()))
	return srv.ServeStdio()
}

func main() {
	cmd := &cli.Command{
		Name:   "ansuz",
		Usage:  "Local-first Markdown editor with live preview, auto-save, and multi-format export",
		Action: runServe,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when absent)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import Markdown or text files as documents",
				ArgsUsage: "FILE...",
				Action:    runImport,
			},
			{
				Name:      "export",
				Usage:     "Render one document to a file",
				ArgsUsage: "DOCUMENT_ID",
				Action:    runExport,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: pdf, html, docx, or xlsx",
						Value:   "pdf",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output path (default: derived from the title)",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List documents, most recently modified first",
				Action: runList,
			},
			{
				Name:   "mcp",
				Usage:  "Serve documents to LLM tools over the Model Context Protocol on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
