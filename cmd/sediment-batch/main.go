package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/app"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/export"
	"github.com/joseph-ayodele/sediment-tracker/internal/ingest"
	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		file    = flag.String("file", "", "single PDF to process")
		dir     = flag.String("dir", "", "directory of PDFs to process (recursive)")
		dryRun  = flag.Bool("dry-run", false, "extract and classify without writing to the database")
		debug   = flag.Bool("debug", false, "debug logging")
		policy  = flag.String("policy", "", "duplicate policy: SKIP, UPDATE or VERSION (default from DUPLICATE_POLICY)")
		workers = flag.Int("workers", 0, "documents processed concurrently (default from DOC_WORKERS)")
		out     = flag.String("out", "", "optional XLSX export of the results")
		rules   = flag.String("rules", "", "optional YAML rules file (default from RULES_FILE)")
		summary = flag.Bool("json", false, "print the batch summary as JSON on stdout")
	)
	flag.Parse()

	if (*file == "") == (*dir == "") {
		printError("Error: exactly one of --file or --dir is required\n")
		flag.Usage()
		return 2
	}
	var pol constants.DuplicatePolicy
	if *policy != "" {
		p, ok := constants.ParseDuplicatePolicy(*policy)
		if !ok {
			printError("Error: invalid --policy %q, use SKIP, UPDATE or VERSION\n", *policy)
			return 2
		}
		pol = p
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = common.WithRunID(ctx, uuid.NewString())

	cfg := common.LoadConfig()
	a, err := app.New(ctx, cfg, app.Options{DryRun: *dryRun, Policy: pol, RulesFile: *rules}, logger)
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return 1
	}
	defer a.Close()

	var outcomes []pipeline.Outcome
	var stats pipeline.Stats
	if *file != "" {
		o := a.Processor.ProcessFile(ctx, *file)
		outcomes = []pipeline.Outcome{o}
		stats.Add(o)
	} else {
		paths, dirStats, err := ingest.ScanDirectory(*dir, true, logger)
		if err != nil {
			logger.Error("failed to scan directory", "dir", *dir, "error", err)
			return 1
		}
		if len(paths) == 0 {
			logger.Warn("no PDF files found", "dir", *dir, "scanned", dirStats.Scanned)
		}
		n := *workers
		if n <= 0 {
			n = a.Config.Extraction.DocWorkers
		}
		outcomes, stats = a.Processor.RunBatch(ctx, paths, n)
	}

	if *out != "" {
		if err := export.NewService(logger).WriteFile(*out, outcomes); err != nil {
			logger.Error("failed to write export", "output", *out, "error", err)
			return 1
		}
		logger.Info("export written", "output", *out)
	}

	if *summary {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(struct {
			pipeline.Stats
			SuccessRate float64 `json:"success_rate"`
			DryRun      bool    `json:"dry_run"`
		}{stats, stats.SuccessRate(), *dryRun})
	} else {
		fmt.Printf("Processing complete!\n")
		fmt.Printf("- Total:       %d\n", stats.Total)
		fmt.Printf("- Succeeded:   %d (%d need review)\n", stats.Succeeded, stats.Partial)
		fmt.Printf("- Failed:      %d\n", stats.Failed)
		fmt.Printf("- Skipped:     %d\n", stats.Skipped)
		fmt.Printf("- Unsupported: %d\n", stats.Unsupported)
		fmt.Printf("- Success:     %.1f%%\n", stats.SuccessRate())
	}

	// a single file must succeed; a directory fails only when nothing did
	if stats.Succeeded == 0 && (*file != "" || stats.Total > 0) {
		return 1
	}
	return 0
}
