// MovieLens 100k loader for cinequery.
// Reads u.item and u.data from a data directory and fills the SQLite
// catalog the API server queries.
//
// Usage:
//
//	movielens-loader -data-dir data/ml-100k -db data/movies.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	logpkg "github.com/cinequery/cinequery/internal/logger"
	"github.com/cinequery/cinequery/internal/repository/ingest"
	movierepo "github.com/cinequery/cinequery/internal/repository/movie"
)

type config struct {
	dataDir   string
	dbPath    string
	chunkSize int
}

func parseFlags() config {
	cfg := config{}
	flag.StringVar(&cfg.dataDir, "data-dir", "data/ml-100k", "directory with u.item and u.data")
	flag.StringVar(&cfg.dbPath, "db", "data/movies.db", "path to the SQLite catalog database")
	flag.IntVar(&cfg.chunkSize, "chunk-size", ingest.DefaultChunkSize, "ratings per insert transaction")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	logger, err := logpkg.NewLogger("local", "info")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := movierepo.Open(cfg.dbPath, logger)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	start := time.Now()
	logger.Info("Starting ingestion",
		zap.String("data_dir", cfg.dataDir),
		zap.String("db", cfg.dbPath),
		zap.Int("chunk_size", cfg.chunkSize),
	)

	report, err := ingest.New(store.DB(), cfg.dataDir, cfg.chunkSize, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Printf("Loaded %d movies, %d ratings, %d genres (%d links) in %s\n",
		report.MovieRows, report.RatingRows, report.GenreCount, report.GenreLinks,
		time.Since(start).Round(time.Millisecond))
	return nil
}
