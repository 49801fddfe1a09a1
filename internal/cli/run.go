package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/standings-scraper/internal/config"
	"github.com/pfrederiksen/standings-scraper/internal/fetcher"
	"github.com/pfrederiksen/standings-scraper/internal/logger"
	"github.com/pfrederiksen/standings-scraper/internal/metrics"
	"github.com/pfrederiksen/standings-scraper/internal/publish"
	"github.com/pfrederiksen/standings-scraper/internal/runner"
	"github.com/pfrederiksen/standings-scraper/internal/scraper"
	"github.com/pfrederiksen/standings-scraper/internal/standings"
	"github.com/pfrederiksen/standings-scraper/internal/storage"
)

// Publisher uploads the written snapshot somewhere downstream
type Publisher interface {
	Publish(ctx context.Context, data []byte) (string, error)
	Close() error
}

// newPublisher opens the Cloud Storage publisher; replaced in tests
var newPublisher = func(ctx context.Context, cfg publish.Config) (Publisher, error) {
	g, err := publish.NewGCS(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape the standings page and write the snapshot (default)",
		Args:  cobra.NoArgs,
		RunE:  a.runScrape,
	}
	addRunFlags(cmd)
	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("url", config.DefaultSourceURL, "Standings page to scrape")
	flags.String("transport", fetcher.NameColly, "Primary transport: colly, http or headless")
	flags.String("fallback", fetcher.NameHTTP, "Fallback transport, or 'none'")
	flags.Duration("timeout", fetcher.DefaultTimeout, "Request timeout per transport")
	flags.String("user-agent", fetcher.DefaultUserAgent, "User-Agent header sent with the request")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	flags.String("gcs-bucket", "", "Publish the snapshot to this Cloud Storage bucket")
	flags.String("gcs-object", config.DefaultOutput, "Object name used when publishing")
	flags.Bool("fail-on-degraded", false, "Exit with status 2 when the snapshot is degraded")
}

// runScrape is the main command logic
func (a *app) runScrape(cmd *cobra.Command, args []string) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}

	cfg, err := a.load(cmd)
	if err != nil {
		return err
	}

	failOnDegraded, err := cmd.Flags().GetBool("fail-on-degraded")
	if err != nil {
		return err
	}

	log := newLogger(cfg.Log, cmd.ErrOrStderr()).With(logger.Fields{"run_id": uuid.NewString()})
	logger.SetDefault(log)
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info("Starting scrape", logger.Fields{
		"url":       cfg.SourceURL,
		"transport": cfg.Fetch.Transport,
		"fallback":  cfg.Fetch.Fallback,
	})

	store, err := storage.New(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	previous, err := store.LoadSnapshot()
	if err != nil {
		log.Warn("Ignoring previous snapshot", logger.Fields{"path": store.Path(), "error": err.Error()})
		previous = nil
	} else if previous != nil {
		log.Debug("Loaded previous snapshot", logger.Fields{"rows": previous.StandingCount, "status": previous.Status})
	}

	recorder := metrics.New()

	f, err := buildFetcher(cfg, recorder, log)
	if err != nil {
		return err
	}
	defer f.Close()

	extractor := scraper.New(scraper.NewKeywordMatcher(cfg.Extract.PointsMarkers, cfg.Extract.LabelMarkers))
	result := runner.New(cfg.SourceURL, f, extractor, runner.WithLogger(log)).Run(ctx, previous)
	snap := result.Snapshot

	data, err := store.SaveSnapshot(snap)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	log.Info("Wrote snapshot", logger.Fields{
		"path":    store.Path(),
		"entries": snap.StandingCount,
		"status":  snap.Status,
	})
	if snap.Warning != nil {
		log.Warn("Completed with warning", logger.Fields{"warning": *snap.Warning})
	}

	out := &OutputResult{
		CheckedAt:     time.Now().UTC(),
		Source:        snap.Source,
		OutputFile:    store.Path(),
		Status:        snap.Status,
		Warning:       snap.Warning,
		StandingCount: snap.StandingCount,
		Stale:         result.Stale,
	}
	if previous.HasRows() && result.Diff != nil {
		out.Changes = result.Diff.Changes
	}

	var errs []error

	if cfg.Publish.GCSBucket != "" {
		uri, err := publishSnapshot(ctx, cfg.Publish, data)
		if err != nil {
			log.Error("Publish failed", logger.Fields{"bucket": cfg.Publish.GCSBucket}, err)
			errs = append(errs, err)
		} else {
			log.Info("Published snapshot", logger.Fields{"uri": uri})
			out.PublishedTo = uri
		}
	}

	if cfg.Metrics.Textfile != "" {
		recorder.ObserveSnapshot(snap, time.Now())
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("Writing metrics failed", logger.Fields{"path": cfg.Metrics.Textfile}, err)
			errs = append(errs, fmt.Errorf("writing metrics: %w", err))
		} else {
			out.MetricsFile = cfg.Metrics.Textfile
		}
	}

	if err := WriteOutput(cmd.OutOrStdout(), out, format, a.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if failOnDegraded && snap.Degraded() {
		return &CodeError{Code: ExitDegraded}
	}

	return nil
}

// buildFetcher wires the configured transports into a fetcher
func buildFetcher(cfg config.Config, observer fetcher.Observer, log *logger.Logger) (*fetcher.Fetcher, error) {
	fcfg := cfg.FetcherConfig()

	primary, err := fetcher.NewTransport(cfg.Fetch.Transport, fcfg)
	if err != nil {
		return nil, err
	}
	fallback, err := fetcher.NewTransport(cfg.Fetch.Fallback, fcfg)
	if err != nil {
		return nil, err
	}

	return fetcher.New(fcfg, primary, fallback,
		fetcher.WithObserver(observer),
		fetcher.WithLogger(log),
	), nil
}

// publishSnapshot uploads data with the configured publisher
func publishSnapshot(ctx context.Context, cfg config.PublishConfig, data []byte) (string, error) {
	p, err := newPublisher(ctx, publish.Config{
		Bucket:       cfg.GCSBucket,
		Object:       cfg.Object,
		CacheControl: cfg.CacheControl,
	})
	if err != nil {
		return "", fmt.Errorf("opening publisher: %w", err)
	}
	defer p.Close()

	return p.Publish(ctx, data)
}

// loadSnapshot reads the snapshot at path for display
func loadSnapshot(path string) (*standings.Snapshot, error) {
	store, err := storage.New(path)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	snap, err := store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no snapshot at %s, run the scraper first", store.Path())
	}
	return snap, nil
}
