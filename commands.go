package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"catalog-aggregator/browser"
	"catalog-aggregator/catalog"
	"catalog-aggregator/config"
	"catalog-aggregator/models"
	"catalog-aggregator/scraper"
	"catalog-aggregator/services"
	"catalog-aggregator/storage"
	"catalog-aggregator/utils"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog-aggregator",
		Short:         "catalog-aggregator scrapes a column-toggled catalog UI into one wide table.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.CatalogFile, "catalog-file", cfg.CatalogFile, "YAML catalog definition to use instead of the built-in one")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	root.PersistentFlags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write JSON logs to this rotated file")

	root.AddCommand(newScrapeCmd(cfg), newCatalogsCmd(cfg))
	return root
}

func newScrapeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [flags]",
		Short: "Scrapes one catalog type into a CSV file and, optionally, a database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "CSV file to write (overwritten)")
	f.StringVarP(&cfg.CatalogType, "type", "t", cfg.CatalogType, "catalog type to scrape")
	f.StringSliceVarP(&cfg.Descriptors, "descriptors", "d", cfg.Descriptors, "descriptor keys to extract (default: storage-eligible ones)")
	f.StringVarP(&cfg.Gender, "gender", "g", cfg.Gender, "none, men or women")
	f.IntVar(&cfg.PageStart, "start", cfg.PageStart, "first page")
	f.IntVar(&cfg.PageStop, "stop", cfg.PageStop, "stop before this page (0: until the data ends)")
	f.Float64Var(&cfg.SleepSeconds, "sleep", cfg.SleepSeconds, "seconds to wait after each UI change")
	f.Float64Var(&cfg.TimeoutSeconds, "timeout", cfg.TimeoutSeconds, "seconds to wait for each element")
	f.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "catalog site")
	f.StringVar(&cfg.Backend, "backend", cfg.Backend, "chromedp or rod")
	f.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run the browser headless")
	f.BoolVar(&cfg.ProbeStatus, "probe-status", cfg.ProbeStatus, "stop on pages answering with an error status")
	f.StringVar(&cfg.Sink, "sink", cfg.Sink, "none, postgres, mysql or sqlite")
	f.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "database file for the sqlite sink")
	return cmd
}

func newCatalogsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "catalogs [type]",
		Short: "Lists catalog types, or the descriptors of one type.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)

			if len(args) == 0 {
				t.AppendHeader(table.Row{"Type", "Path", "Descriptors", "Stored"})
				for _, ct := range reg.Types() {
					t.AppendRow(table.Row{ct.Name, ct.Path, len(ct.Descriptors), len(ct.StorageEligible())})
				}
				t.Render()
				return nil
			}

			ct, err := reg.Lookup(args[0])
			if err != nil {
				return err
			}
			t.AppendHeader(table.Row{"Key", "Column", "Rule", "Stored", "Hidden"})
			for _, d := range ct.Descriptors {
				t.AppendRow(table.Row{d.Key, d.DisplayName(), d.Rule.Kind(), yesNo(d.Store), yesNo(d.HiddenByDefault)})
			}
			t.Render()
			if ct.Note != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\nNote: %s\n", ct.Note)
			}
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func loadCatalog(cfg *config.Config) (*catalog.Registry, error) {
	if cfg.CatalogFile != "" {
		return catalog.LoadFile(cfg.CatalogFile)
	}
	return catalog.Load()
}

func runScrape(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLoggerWithOptions(utils.LogOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logger.Close()

	// Everything is validated before the browser starts.
	if err := cfg.Validate(); err != nil {
		return err
	}
	reg, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	ct, descs, err := cfg.Resolve(reg)
	if err != nil {
		return err
	}
	gender, _ := models.ParseGender(cfg.Gender)

	opts := scraper.Options{
		BaseURL:     cfg.BaseURL,
		Catalog:     ct,
		Gender:      gender,
		Descriptors: descs,
		Pages:       scraper.PageRange{Start: cfg.PageStart, Stop: cfg.PageStop},
		Sleep:       cfg.Sleep(),
		Timeout:     cfg.Timeout(),
		MaxRetries:  cfg.MaxRetries,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger.Info("=== Catalog aggregator starting ===")
	logger.Info("Config - catalog: %s | gender: %s | pages: %s | columns: %d | backend: %s",
		ct.Name, gender, opts.Pages, len(descs), cfg.Backend)

	sink, err := openSink(cfg, logger)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
	}

	adapter, err := newAdapter(cfg, logger)
	if err != nil {
		return err
	}
	var prober scraper.StatusProber
	if cfg.ProbeStatus {
		prober = browser.NewHTTPProber(cfg.Timeout(), "")
	}

	session, err := scraper.NewSession(adapter, prober, opts, logger)
	if err != nil {
		_ = adapter.Close()
		return err
	}
	defer session.Close()

	// The output file is only truncated once the browser is up.
	csvWriter, err := storage.NewCSVWriter(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer csvWriter.Close()

	raw, runErr := session.Run(ctx)
	if runErr != nil {
		logger.Error("Scrape stopped early: %v", runErr)
	}
	if len(raw.Records) == 0 {
		logger.Warn("No rows were scraped")
	}

	tbl, err := services.NewCleaner(logger).Clean(raw)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	if err := csvWriter.Write(tbl); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("%d rows saved to %s", len(tbl.Rows), cfg.OutputPath)
	}

	if sink != nil {
		if err := sink.Write(tbl); err != nil {
			logger.Error("%s write failed: %v", cfg.Sink, err)
		}
	}

	reporter := services.NewReportService(logger)
	reporter.Print(os.Stdout, reporter.Generate(tbl, raw))

	return runErr
}

func newAdapter(cfg *config.Config, logger *utils.Logger) (scraper.Adapter, error) {
	opts := browser.Options{ExecPath: cfg.ChromeBin, Headless: cfg.Headless}
	switch cfg.Backend {
	case config.BackendRod:
		return browser.NewRod(opts, logger)
	default:
		return browser.NewChrome(opts, logger)
	}
}

func openSink(cfg *config.Config, logger *utils.Logger) (storage.TableWriter, error) {
	switch cfg.Sink {
	case config.SinkPostgres:
		return storage.NewPostgresWriter(cfg.DSN(), logger)
	case config.SinkMySQL:
		return storage.NewMySQLWriter(cfg.MySQLDSN, logger)
	case config.SinkSQLite:
		return storage.NewSQLiteWriter(cfg.SQLitePath, logger)
	}
	return nil, nil
}
