package cards

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/youruser/deckbuilder/internal/metrics"
)

// ErrCatalogEmpty is reported when no source produced a card and the built-in
// catalog was used instead.
var ErrCatalogEmpty = errors.New("catalog empty: using built-in cards")

// maxParallelFetches bounds concurrent source reads.
const maxParallelFetches = 4

// Source is one catalog input. Every row of the source belongs to Faction.
type Source struct {
	Faction  Faction `toml:"faction" json:"faction"`
	Location string  `toml:"location" json:"location"`
}

// IngestionError describes a source that could not be read.
type IngestionError struct {
	Source Source
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s source %s: %v", e.Source.Faction, e.Source.Location, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// LoadReport summarises one load. Failures never abort ingestion.
type LoadReport struct {
	Failed   []*IngestionError
	Counts   map[Faction]int
	Fallback bool
}

// Err returns ErrCatalogEmpty when the fallback catalog was used, otherwise the
// joined ingestion errors, or nil.
func (r *LoadReport) Err() error {
	if r.Fallback {
		return ErrCatalogEmpty
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Fetcher reads the raw bytes of a source location.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Loader ingests catalog sources.
type Loader struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewLoader(fetcher Fetcher, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, logger: logger}
}

// SourcesFromDataDir returns the conventional layout: one <faction>.csv per
// faction inside dataDir.
func SourcesFromDataDir(dataDir string) []Source {
	out := make([]Source, 0, len(Factions))
	for _, f := range Factions {
		out = append(out, Source{Faction: f, Location: filepath.Join(dataDir, string(f)+".csv")})
	}
	return out
}

// Load reads every source, in parallel, and parses them in source order so
// card IDs run from 1 across all sources. It always returns a usable catalog.
func (l *Loader) Load(ctx context.Context, sources []Source) (*Catalog, *LoadReport) {
	bodies := make([][]byte, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, src := range sources {
		g.Go(func() error {
			if !src.Faction.valid() {
				errs[i] = fmt.Errorf("unknown faction %q", src.Faction)
				return nil
			}
			b, err := l.fetcher.Fetch(gctx, src.Location)
			if err != nil {
				errs[i] = err
				return nil
			}
			bodies[i] = b
			return nil
		})
	}
	// Workers only report through errs; Wait never fails.
	_ = g.Wait()

	report := &LoadReport{Counts: map[Faction]int{}}
	var all []Card
	for i, src := range sources {
		if errs[i] != nil {
			ie := &IngestionError{Source: src, Err: errs[i]}
			report.Failed = append(report.Failed, ie)
			metrics.SourceLoaded(string(src.Faction), false)
			l.logger.Warn("catalog source skipped",
				zap.String("faction", string(src.Faction)),
				zap.String("source", src.Location),
				zap.Error(errs[i]))
			continue
		}
		parsed := ParseCSV(src.Faction, string(bodies[i]), len(all)+1)
		all = append(all, parsed...)
		report.Counts[src.Faction] += len(parsed)
		metrics.SourceLoaded(string(src.Faction), true)
		l.logger.Debug("catalog source loaded",
			zap.String("faction", string(src.Faction)),
			zap.String("source", src.Location),
			zap.Int("cards", len(parsed)))
	}

	if len(all) == 0 {
		report.Fallback = true
		all = DefaultCards()
		for _, c := range all {
			report.Counts[c.Faction]++
		}
		l.logger.Error("no catalog cards loaded, using built-in catalog",
			zap.Int("sources", len(sources)),
			zap.Int("failed", len(report.Failed)))
	}

	catalog := NewCatalog(all)
	for _, name := range catalog.Duplicates() {
		l.logger.Warn("duplicate card name, keeping first record", zap.String("name", name))
	}
	metrics.CatalogLoaded(catalog.Len(), report.Fallback)
	l.logger.Info("catalog loaded",
		zap.Int("cards", catalog.Len()),
		zap.Int("failed_sources", len(report.Failed)),
		zap.Bool("fallback", report.Fallback))
	return catalog, report
}

func (f Faction) valid() bool {
	_, err := ParseFaction(string(f))
	return err == nil
}
