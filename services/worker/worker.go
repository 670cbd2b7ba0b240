package worker

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"ldurand/adidasharvester/config"
	"ldurand/adidasharvester/internal/crawler"
	"ldurand/adidasharvester/internal/enricher"
	"ldurand/adidasharvester/internal/store"
	"ldurand/adidasharvester/logger"
	"ldurand/adidasharvester/services/publisher"
)

// Worker orchestrates the two pipeline passes: listing discovery into the
// link store, and enrichment of every persisted code. Everything runs
// sequentially, one target, page, code and image at a time.
type Worker struct {
	cfg      config.Config
	targets  []crawler.Target
	walker   *crawler.Walker
	links    *store.LinkStore
	enricher *enricher.Enricher
	ledger   *enricher.Ledger
	pub      publisher.Publisher
	log      *logger.Logger
}

// NewWorker creates a worker. pub may be nil.
func NewWorker(
	cfg config.Config,
	targets []crawler.Target,
	walker *crawler.Walker,
	links *store.LinkStore,
	enr *enricher.Enricher,
	ledger *enricher.Ledger,
	pub publisher.Publisher,
) *Worker {
	return &Worker{
		cfg:      cfg,
		targets:  targets,
		walker:   walker,
		links:    links,
		enricher: enr,
		ledger:   ledger,
		pub:      pub,
		log:      logger.ForComponent("worker"),
	}
}

// RunCrawl walks every configured target and persists the discovered links
// and codes. A failing target is logged and skipped; the pass never aborts.
func (w *Worker) RunCrawl(ctx context.Context) error {
	for _, target := range w.targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		refs, err := w.walker.Walk(target)
		if err != nil {
			if errors.Is(err, crawler.ErrNoPagination) {
				w.log.Warn().
					Str("target", target.Key()).
					Str("url", target.ListingURL).
					Msg("No pagination detected, target skipped")
			} else {
				w.log.Warn().
					Str("target", target.Key()).
					Err(err).
					Msg("Target aborted")
			}
			continue
		}

		if _, err := w.links.Append(target, refs); err != nil {
			w.log.Error().
				Str("target", target.Key()).
				Err(err).
				Msg("Cannot persist links")
		}
	}
	return nil
}

// RunEnrich resets the dedup ledger, then enriches every code found in the
// persisted codes files under the links root. The target context is derived
// from each file's path.
func (w *Worker) RunEnrich(ctx context.Context) error {
	w.ledger.Reset()

	var files []string
	err := filepath.WalkDir(w.cfg.LinksRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "_codes.txt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.log.Warn().Str("root", w.cfg.LinksRoot).Msg("Links root does not exist, nothing to enrich")
			return nil
		}
		w.log.Error().Err(err).Msg("Cannot scan links root")
		return err
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, ok := w.targetFromPath(file)
		if !ok {
			w.log.Warn().Str("file", file).Msg("Unrecognized codes file path, skipped")
			continue
		}

		if err := w.enrichFile(ctx, file, target); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) enrichFile(ctx context.Context, file string, target crawler.Target) error {
	codes, err := store.ReadCodes(file)
	if err != nil {
		w.log.Error().Str("file", file).Err(err).Msg("Cannot read codes file")
		return nil
	}

	total := len(codes)
	if limit := w.cfg.TestModeLimit; limit > 0 && len(codes) > limit {
		codes = codes[:limit]
	}

	w.log.Info().
		Str("target", target.Key()).
		Int("codes", len(codes)).
		Msg("Enriching codes")

	ok := 0
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.enricher.Enrich(code, target); err != nil {
			w.log.Error().
				Str("code", code).
				Str("target", target.Key()).
				Err(err).
				Msg("Enrichment failed")
			continue
		}
		ok++
	}

	w.log.Info().
		Str("target", target.Key()).
		Int("ok", ok).
		Int("total", total).
		Msg("Category file done")
	return nil
}

// targetFromPath recovers (country, gender, category) from a codes file path
// shaped <links_root>/<country>/<gender>/<category>_codes.txt.
func (w *Worker) targetFromPath(path string) (crawler.Target, bool) {
	rel, err := filepath.Rel(w.cfg.LinksRoot, path)
	if err != nil {
		return crawler.Target{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 3 {
		return crawler.Target{}, false
	}
	category := strings.TrimSuffix(parts[2], "_codes.txt")
	if category == "" {
		return crawler.Target{}, false
	}
	return crawler.Target{
		Country:  parts[0],
		Gender:   parts[1],
		Category: category,
	}, true
}

// Start runs crawl and enrich passes on the configured interval until the
// context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	for {
		start := time.Now()

		if err := w.RunCrawl(ctx); err != nil {
			return err
		}
		if err := w.RunEnrich(ctx); err != nil {
			return err
		}
		if w.pub != nil {
			if err := w.pub.TrimStreams(); err != nil {
				w.log.Error().Err(err).Msg("Stream trimming failed")
			}
		}

		w.log.Info().
			Dur("elapsed", time.Since(start)).
			Msg("Harvest cycle complete")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.CrawlInterval):
		}
	}
}
