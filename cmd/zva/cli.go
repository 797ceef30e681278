package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zvaintel/internal/app"
	"zvaintel/internal/config"
	"zvaintel/internal/db"
	"zvaintel/internal/models"
	"zvaintel/internal/pkg/aggregator"
	"zvaintel/internal/pkg/export"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

type runner struct {
	cfg    *config.Config
	openDB func() (*gorm.DB, error)
	out    io.Writer
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, openDB func() (*gorm.DB, error), out io.Writer) *cli.App {
	r := &runner{cfg: cfg, openDB: openDB, out: out}
	return &cli.App{
		Name:    "zva",
		Usage:   "Latvian wholesale medicine registry and supplier intelligence",
		Version: Version,
		Writer:  out,
		Commands: []*cli.Command{
			r.extractCmd(),
			r.exportCmd(),
			r.searchCmd(),
			r.researchCmd(),
			r.matchCmd(),
		},
	}
}

// services builds the app, with a database only when the command needs one.
func (r *runner) services(ctx context.Context, withDB bool) (*app.App, error) {
	var database *gorm.DB
	if withDB {
		var err error
		if database, err = r.openDB(); err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	}
	return app.New(ctx, r.cfg, database)
}

func (r *runner) extractCmd() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Scrape the wholesale registry",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-pages", Usage: "Pages to visit (default from REGISTRY_MAX_PAGES)"},
			&cli.IntFlag{Name: "page-size", Usage: "Rows per page (default from REGISTRY_PAGE_SIZE)"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between page loads (default from REGISTRY_PAGE_DELAY)"},
			&cli.BoolFlag{Name: "save", Usage: "Upsert the records into the database"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Also write the records to a .csv or .xlsx file"},
		},
		Action: func(c *cli.Context) error {
			services, err := r.services(c.Context, c.Bool("save"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer services.Close()

			opts := services.Options()
			if n := c.Int("max-pages"); n > 0 {
				opts.MaxPages = n
			}
			if n := c.Int("page-size"); n > 0 {
				opts.PageSize = n
			}
			if c.IsSet("delay") {
				opts.Delay = c.Duration("delay")
			}

			result := services.Extractor.Extract(c.Context, opts)
			summary := map[string]any{
				"records":      len(result.Records),
				"pages":        result.Pages,
				"pages_failed": result.PagesFailed,
				"dropped":      result.Dropped,
				"errors":       result.Errors,
			}

			if c.Bool("save") {
				saved := services.Store.UpsertRegistryRecords(c.Context, result.Records)
				summary["saved"] = saved.Saved
				summary["save_failed"] = saved.Failed
			}
			if path := c.String("out"); path != "" {
				if err := writeFile(path, "", result.Records); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				summary["file"] = path
			}

			return r.outputJSON(summary)
		},
	}
}

func (r *runner) exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export stored registry records",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (stdout when empty)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv|xlsx (default from the file extension, else csv)"},
			&cli.StringFlag{Name: "substance", Usage: "Filter by active ingredient"},
			&cli.StringFlag{Name: "wholesaler", Usage: "Filter by wholesaler name"},
		},
		Action: func(c *cli.Context) error {
			format, err := exportFormat(c.String("out"), c.String("format"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			services, err := r.services(c.Context, true)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer services.Close()

			records, err := services.Store.ListRegistryRecords(c.Context, db.RecordFilter{
				Substance:  c.String("substance"),
				Wholesaler: c.String("wholesaler"),
				Limit:      1 << 20,
			})
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if path := c.String("out"); path != "" {
				if err := writeFile(path, format, records); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				fmt.Fprintf(c.App.ErrWriter, "wrote %d records to %s\n", len(records), path)
				return nil
			}
			return writeRecords(r.out, format, records)
		},
	}
}

func (r *runner) searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find potential suppliers for a medicine",
		ArgsUsage: "<medicine name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dosage", Usage: "Strength, e.g. 400mg"},
			&cli.StringFlag{Name: "country", Usage: "Market to search in"},
			&cli.IntFlag{Name: "depth", Value: aggregator.DefaultDepth, Usage: "Query variants to try (1-5)"},
		},
		Action: func(c *cli.Context) error {
			name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if name == "" {
				return cli.Exit("medicine name is required", 1)
			}

			services, err := r.services(c.Context, false)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer services.Close()

			return r.outputJSON(services.Aggregator.Search(c.Context, aggregator.Request{
				MedicineName: name,
				Dosage:       c.String("dosage"),
				Country:      c.String("country"),
				SearchDepth:  c.Int("depth"),
			}))
		},
	}
}

func (r *runner) researchCmd() *cli.Command {
	return &cli.Command{
		Name:      "research",
		Usage:     "Research and classify a vendor",
		ArgsUsage: "<vendor name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "country", Usage: "Country the vendor operates in"},
			&cli.StringFlag{Name: "website", Usage: "Known official website"},
		},
		Action: func(c *cli.Context) error {
			name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if name == "" {
				return cli.Exit("vendor name is required", 1)
			}

			services, err := r.services(c.Context, true)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer services.Close()

			ctx, cancel := context.WithTimeout(c.Context, 5*time.Minute)
			defer cancel()

			v, errs := services.Research.Research(ctx, name, c.String("country"), c.String("website"))
			return r.outputJSON(map[string]any{"intelligence": v, "errors": errs})
		},
	}
}

func (r *runner) matchCmd() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "List registered wholesalers for an active substance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "substance", Aliases: []string{"s"}, Required: true, Usage: "Active substance"},
			&cli.StringFlag{Name: "dosage-form", Usage: "Only this dosage form"},
		},
		Action: func(c *cli.Context) error {
			services, err := r.services(c.Context, true)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer services.Close()

			matches, errs := services.Matcher.Match(c.Context, c.String("substance"), c.String("dosage-form"))
			return r.outputJSON(map[string]any{"matches": matches, "errors": errs})
		},
	}
}

func (r *runner) outputJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exportFormat resolves the export format from the flag or the file extension.
func exportFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "", "csv":
		return "csv", nil
	case "xlsx":
		return "xlsx", nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

func writeFile(path, format string, records []models.RegistryRecord) error {
	format, err := exportFormat(path, format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeRecords(f, format, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRecords(w io.Writer, format string, records []models.RegistryRecord) error {
	if format == "xlsx" {
		return export.WriteXLSX(w, records)
	}
	return export.WriteCSV(w, records)
}
