// Command catalog browses a WordPress resource catalog from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/catalog/internal/catalog"
	"github.com/abelbrown/catalog/internal/config"
	"github.com/abelbrown/catalog/internal/logging"
	"github.com/abelbrown/catalog/internal/otel"
	"github.com/abelbrown/catalog/internal/ui"
	"github.com/abelbrown/catalog/internal/vocab"
	"github.com/abelbrown/catalog/internal/wp"
)

var (
	configFile string
	siteURL    string
	origin     string
	logLevel   string
	noTUI      bool
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse a WordPress resource catalog",
	Long: `catalog lists the resources of a WordPress site exposing the resource
REST routes, with facet filters, search that also matches tag and category
names, and sorting.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", config.Path(), "Path to the YAML options file")
	rootCmd.Flags().StringVar(&siteURL, "site-url", "", "Site to browse (overrides site_url)")
	rootCmd.Flags().StringVar(&origin, "origin", config.DefaultOrigin, "Fallback site when site_url is missing or invalid")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
	rootCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Fetch once and print the sorted list")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, origin)
	if err != nil {
		return err
	}
	if siteURL != "" {
		cfg.Apply(map[string]any{"site_url": siteURL})
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer logging.Close()
	cfg.ReportWarnings()

	events, closeEvents, err := openEventLog(cfg.EventLog)
	if err != nil {
		return err
	}
	defer closeEvents()
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	api, err := wp.NewClient(cfg.SiteURL, wp.WithTimeout(cfg.Timeout), wp.WithRateLimit(cfg.RateLimit, 5))
	if err != nil {
		return err
	}
	client := catalog.New(cfg, api, catalog.WithEvents(events))
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events.Info(otel.KindStartup, "main", cfg.SiteURL)
	defer events.Info(otel.KindShutdown, "main", "")
	logging.Info("Catalog starting", "site", cfg.SiteURL, "tui", !noTUI)

	if noTUI {
		return printOnce(ctx, client, cfg, cmd.OutOrStdout())
	}
	return runTUI(ctx, client, cfg, ring)
}

func setupLogging(cfg *config.Config) error {
	if noTUI {
		logging.Init(os.Stderr, cfg.LogLevel)
		return nil
	}
	path := cfg.LogFile
	if path == "" {
		var err error
		if path, err = logging.DefaultPath(); err != nil {
			return err
		}
	}
	return logging.InitFile(path, cfg.LogLevel)
}

func openEventLog(path string) (*otel.Logger, func(), error) {
	if path == "" {
		l := otel.NewNullLogger()
		return l, l.Close, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	l := otel.NewLogger(f)
	return l, func() {
		l.Close()
		f.Close()
	}, nil
}

func runTUI(ctx context.Context, client *catalog.Client, cfg *config.Config, ring *otel.RingBuffer) error {
	app := ui.NewApp(ui.AppConfig{
		Catalog:        client,
		Features:       cfg.Features,
		SearchExpanded: cfg.SearchExpanded,
		Ring:           ring,
		Context:        ctx,
	})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := client.Subscribe(ui.Forward(program))
	defer unsubscribe()

	go func() {
		if err := client.Start(ctx); err != nil {
			logging.Warn("Initial load incomplete", "err", err)
		}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// printOnce loads everything, runs one resource query and prints the list.
func printOnce(ctx context.Context, client *catalog.Client, cfg *config.Config, out io.Writer) error {
	err := client.Start(ctx)
	if !cfg.Features.InitialLoad {
		err = errors.Join(err, client.FetchResources(ctx))
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSLUG\tCATEGORIES\tTAGS")
	for _, r := range client.Resources() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Title, r.Slug,
			termNames(client, vocab.Categories, r.Taxonomies.Category),
			termNames(client, vocab.Tags, r.Taxonomies.Tag))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	fmt.Fprintf(out, "%d resources\n", client.Count())
	return err
}

func termNames(client *catalog.Client, name vocab.Name, ids []int) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = client.TermName(name, id)
	}
	return strings.Join(names, ", ")
}
