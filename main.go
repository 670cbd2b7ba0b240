package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ldurand/adidasharvester/config"
	"ldurand/adidasharvester/internal/crawler"
	"ldurand/adidasharvester/internal/enricher"
	"ldurand/adidasharvester/internal/fetch"
	"ldurand/adidasharvester/internal/images"
	"ldurand/adidasharvester/internal/metrics"
	"ldurand/adidasharvester/internal/store"
	"ldurand/adidasharvester/logger"
	"ldurand/adidasharvester/services/cache"
	"ldurand/adidasharvester/services/publisher"
	"ldurand/adidasharvester/services/worker"
)

func main() {
	godotenv.Load()
	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:   "adidasharvester",
		Short: "Harvests the adidas catalog: listing links, product data and images",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "crawl",
			Short: "Walk every configured listing and persist discovered links and codes",
			RunE: func(cmd *cobra.Command, _ []string) error {
				app := newApp(ctx, cfg)
				defer app.cleanup()
				return app.worker.RunCrawl(ctx)
			},
		},
		&cobra.Command{
			Use:   "enrich",
			Short: "Enrich every persisted product code and download images",
			RunE: func(cmd *cobra.Command, _ []string) error {
				app := newApp(ctx, cfg)
				defer app.cleanup()
				return app.worker.RunEnrich(ctx)
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Crawl and enrich on the configured interval until interrupted",
			RunE: func(cmd *cobra.Command, _ []string) error {
				app := newApp(ctx, cfg)
				defer app.cleanup()
				err := app.worker.Start(ctx)
				if err == context.Canceled {
					log.Info().Msg("Shutting down gracefully...")
					return nil
				}
				return err
			},
		},
	)

	if err := root.ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

// app wires the pipeline per the loaded configuration.
type app struct {
	worker *worker.Worker
	pub    publisher.Publisher
}

func newApp(ctx context.Context, cfg config.Config) *app {
	log := logger.Default

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using memcached cooldown cache")
	} else {
		cacheSvc = cache.NewMemoryService()
	}

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr, m); err != nil {
				log.Error().Err(err).Msg("Metrics server stopped")
			}
		}()
	}

	var pub publisher.Publisher
	if cfg.PublishEnabled {
		pub = publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB,
			cfg.RedisStreamPrefix, cfg.RedisStreamCount, cfg.RedisStreamMaxLength)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Publishing enriched products to Redis")
	}

	client := fetch.NewClient(cfg, cacheSvc, m)
	walker := crawler.NewWalker(client, cfg, m)
	links := store.NewLinkStore(cfg.LinksRoot)
	records := store.NewRecordWriter(cfg.ProductsRoot)
	rejects := store.NewRejectionLog(cfg.RejectsFile)
	acquirer := images.NewAcquirer(client, m)
	ledger := enricher.NewLedger()
	enr := enricher.New(client, cfg.ProductAPIURL, cfg.ImagesRoot,
		records, rejects, acquirer, ledger, pub, m)

	targets := crawler.TargetsFor(cfg.Countries)
	if len(targets) == 0 {
		log.Fatal().Strs("countries", cfg.Countries).Msg("No targets configured")
	}
	log.Info().
		Int("targets", len(targets)).
		Str("environment", cfg.Environment).
		Msg("Pipeline wired")

	return &app{
		worker: worker.NewWorker(cfg, targets, walker, links, enr, ledger, pub),
		pub:    pub,
	}
}

func (a *app) cleanup() {
	if a.pub != nil {
		a.pub.Close()
	}
}
