package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/soundmark/soundmark/configs"
	"github.com/soundmark/soundmark/internal/catalogue"
	"github.com/soundmark/soundmark/internal/catalogue/store/mysql"
	"github.com/soundmark/soundmark/internal/catalogue/store/postgres"
	"github.com/soundmark/soundmark/internal/soundmark"
	"github.com/soundmark/soundmark/utils/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	ingestFile := flag.String("ingest", "", "ingest a single audio file")
	ingestDir := flag.String("ingest-dir", "", "bulk-ingest every audio file under a directory tree")
	matchFile := flag.String("match", "", "identify an audio clip against the catalogue")
	minConfidence := flag.Int("min-confidence", 0, "override the configured min_confidence for -match")
	statsCmd := flag.Bool("stats", false, "print catalogue statistics")
	deleteID := flag.Int64("delete", -1, "delete a work by its work_id")
	flag.Parse()

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		logger.Error(fmt.Errorf("loading configuration: %w", err))
		os.Exit(1)
	}

	store, err := openStore(*cfg)
	if err != nil {
		logger.Error(fmt.Errorf("opening store: %w", err))
		os.Exit(1)
	}
	app := soundmark.New(store, cfg.Fingerprint)
	defer app.Close()

	ctx := context.Background()

	switch {
	case *deleteID >= 0:
		if err := app.Delete(ctx, *deleteID); err != nil {
			logger.Error(fmt.Errorf("deleting work %d: %w", *deleteID, err))
			os.Exit(1)
		}

	case *statsCmd:
		stats, err := app.Statistics(ctx)
		if err != nil {
			logger.Error(fmt.Errorf("fetching statistics: %w", err))
			os.Exit(1)
		}
		fmt.Printf("works: %d (movies: %d, episodes: %d)\npostings: %d\n",
			stats.TotalWorks, stats.Movies, stats.Episodes, stats.TotalPostings)

	case *matchFile != "":
		result, err := app.Match(ctx, *matchFile, *minConfidence)
		if err != nil {
			logger.Error(fmt.Errorf("matching %s: %w", *matchFile, err))
			os.Exit(1)
		}
		if result == nil {
			fmt.Println("no match found")
			return
		}
		fmt.Printf("%s (%s) at %s — confidence %d (%d raw matches)\n",
			result.Title, result.Kind, catalogue.FormatTimestamp(result.TimeOffsetSeconds),
			result.Confidence, result.TotalRawMatches)

	case *ingestDir != "":
		if err := bulkIngest(ctx, app, *ingestDir); err != nil {
			logger.Error(fmt.Errorf("bulk ingest: %w", err))
			os.Exit(1)
		}

	case *ingestFile != "":
		meta := parseFilename(*ingestFile)
		workID, err := app.Ingest(ctx, meta, *ingestFile)
		if err != nil {
			logger.Error(fmt.Errorf("ingesting %s: %w", *ingestFile, err))
			os.Exit(1)
		}
		fmt.Printf("ingested %s as work %d\n", *ingestFile, workID)

	default:
		flag.Usage()
		os.Exit(1)
	}
}

func openStore(cfg configs.Config) (catalogue.Store, error) {
	switch cfg.Database.Type {
	case "mysql":
		return mysql.Open(cfg.Database.DSN)
	case "postgres":
		return postgres.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Database.Type)
	}
}

var audioExtensions = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".flac": true}

// bulkIngest walks dir for audio files and ingests each one, fanning the
// work out over a small worker pool since ingesting independent files is
// embarrassingly parallel, with a progress bar over the whole batch.
func bulkIngest(ctx context.Context, app *soundmark.Soundmark, dir string) error {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if audioExtensions[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	bar := progressbar.Default(int64(len(files)), "ingesting")

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				meta := parseFilename(path)
				if _, err := app.Ingest(ctx, meta, path); err != nil {
					mu.Lock()
					failures = append(failures, fmt.Errorf("%s: %w", path, err))
					mu.Unlock()
				}
				bar.Add(1)
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	for _, err := range failures {
		logger.Error(err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d files failed to ingest", len(failures), len(files))
	}
	return nil
}
