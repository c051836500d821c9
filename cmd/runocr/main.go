package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/sediment-tracker/internal/app"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := common.LoadConfig()
	engine := app.NewOCR(cfg.OCR, logger)
	acq := app.NewAcquirer(cfg, engine, logger)

	start := time.Now()
	doc, err := acq.Acquire(ctx, path)
	dur := time.Since(start)
	if err != nil {
		logger.Error("text acquisition failed", "path", path, "error", err, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	for _, p := range doc.Pages {
		fmt.Printf("page %3d  %-20s %6d chars  %d table rows\n", p.Index, p.Method, len([]rune(p.Text)), len(p.Rows))
	}
	logger.Info("text acquisition OK",
		"path", path,
		"pages", len(doc.Pages),
		"methods", doc.MethodCounts(),
		"ocr_available", engine.Available(),
		"duration_ms", dur.Milliseconds(),
	)
}
