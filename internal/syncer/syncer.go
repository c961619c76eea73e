package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kofuk/dnssync/internal/config"
	"github.com/kofuk/dnssync/internal/fetcher"
	"github.com/kofuk/dnssync/internal/provider"
	"github.com/kofuk/dnssync/internal/record"
	"golang.org/x/sync/errgroup"
)

// Syncer runs reconciliation passes: one public IP snapshot, then every
// attached provider brought up to date concurrently.
type Syncer struct {
	fetcher   fetcher.Fetcher
	providers map[string]provider.Provider
	topology  record.ProviderTopology
}

type Option func(s *Syncer)

// WithFetcher replaces the fetcher built from config.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(s *Syncer) {
		s.fetcher = f
	}
}

// WithProvider replaces one provider built from config.
func WithProvider(name string, p provider.Provider) Option {
	return func(s *Syncer) {
		s.providers[name] = p
	}
}

func New(cfg *config.Config, options ...Option) (*Syncer, error) {
	records, err := cfg.ConfiguredRecords()
	if err != nil {
		return nil, err
	}
	topology := record.BuildTopology(records)

	providers := make(map[string]provider.Provider)
	for name := range topology {
		decl, ok := cfg.Provider(name)
		if !ok {
			return nil, fmt.Errorf("provider %q: not declared", name)
		}
		p, err := provider.New(decl)
		if err != nil {
			return nil, err
		}
		providers[name] = p
	}

	f, err := buildFetcher(cfg, records)
	if err != nil {
		return nil, err
	}

	s := &Syncer{
		fetcher:   f,
		providers: providers,
		topology:  topology,
	}
	for _, option := range options {
		option(s)
	}
	return s, nil
}

// buildFetcher sets up the shared, cached fetcher for the pass. Records
// name the fetchers they trust; the first referenced declaration wins,
// falling back to the first declared one.
func buildFetcher(cfg *config.Config, records []record.Configured) (fetcher.Fetcher, error) {
	var decl config.Fetcher
	if refs := record.ReferencedFetchers(records); len(refs) > 0 {
		f, ok := cfg.Fetcher(refs[0])
		if !ok {
			return nil, fmt.Errorf("fetcher %q: not declared", refs[0])
		}
		decl = f
	} else if len(cfg.Fetchers) > 0 {
		decl = cfg.Fetchers[0]
	}

	backends, err := decl.EnabledBackends()
	if err != nil {
		return nil, err
	}
	lifetime, err := decl.CacheLifetime()
	if err != nil {
		return nil, err
	}

	inner := fetcher.NewHTTPFetcher(fetcher.WithBackends(backends...))
	return fetcher.NewCache(inner, fetcher.WithLifetime(lifetime)), nil
}

// Report is the outcome of one pass.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	IP         record.PublicIP
	FetchErr   error
	Providers  map[string]error
}

func (r *Report) OK() bool {
	return r.Err() == nil
}

// Err collapses the pass into a single error, nil when everything
// succeeded.
func (r *Report) Err() error {
	var errs []error
	if r.FetchErr != nil {
		errs = append(errs, r.FetchErr)
	}
	for _, name := range slices.Sorted(maps.Keys(r.Providers)) {
		if err := r.Providers[name]; err != nil {
			errs = append(errs, fmt.Errorf("provider %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Run executes one pass. The returned report is non-nil even on failure;
// the error is the report's Err.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Providers: make(map[string]error),
	}
	slog.Info("Starting sync pass.", slog.String("run_id", report.RunID))

	set, err := s.fetcher.Fetch(ctx)
	if err != nil {
		report.FetchErr = fmt.Errorf("fetch public ip: %w", err)
		report.FinishedAt = time.Now()
		slog.Error("Sync pass failed.", slog.String("run_id", report.RunID), slog.Any("error", report.FetchErr))
		return report, report.Err()
	}
	report.IP = set.PublicIP()

	var mu sync.Mutex
	var eg errgroup.Group
	for name, zones := range s.topology {
		eg.Go(func() error {
			err := s.providers[name].Sync(ctx, zones, report.IP)
			mu.Lock()
			report.Providers[name] = err
			mu.Unlock()
			if err != nil {
				slog.Error("Provider sync failed.", slog.String("provider", name), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = eg.Wait()

	report.FinishedAt = time.Now()
	slog.Info("Sync pass finished.",
		slog.String("run_id", report.RunID),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
		slog.Bool("ok", report.OK()))
	return report, report.Err()
}
