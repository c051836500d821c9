package acquire

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

type Config struct {
	MinChars   int           // a method succeeds at or above this many characters
	Workers    int           // pages acquired concurrently
	OCRTimeout time.Duration // shared by all OCR calls of one document
}

// Acquirer turns a PDF into pages, escalating per page from the text layer
// to table reconstruction to OCR.
type Acquirer struct {
	src    Source
	ocr    Recognizer
	cfg    Config
	logger *slog.Logger
}

// New builds an Acquirer. ocr may be nil when no OCR capability exists.
func New(src Source, ocr Recognizer, cfg Config, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = 50
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Acquirer{src: src, ocr: ocr, cfg: cfg, logger: logger}
}

// MinChars is the sufficiency threshold in effect.
func (a *Acquirer) MinChars() int { return a.cfg.MinChars }

// Sufficient reports whether text meets the threshold.
func (a *Acquirer) Sufficient(text string) bool {
	return charCount(text) >= a.cfg.MinChars
}

func charCount(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// Acquire opens path and extracts every page. Only an open failure is returned
// as an error; page failures end up as pages with method none.
func (a *Acquirer) Acquire(ctx context.Context, path string) (entity.Document, error) {
	start := time.Now()
	name := filepath.Base(path)
	logger := a.logger.With("document", name)

	doc, err := a.src.Open(ctx, path)
	if err != nil {
		if !errors.Is(err, common.ErrDocumentOpen) {
			err = errors.Join(common.ErrDocumentOpen, err)
		}
		return entity.Document{}, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("failed to close document", "error", cerr)
		}
	}()

	n := doc.NumPages()
	pages := make([]entity.Page, n)

	ocrAvailable := a.ocr != nil && a.ocr.Available()
	ocrCtx, cancel := common.WithTimeout(ctx, a.cfg.OCRTimeout)
	defer cancel()

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Workers)
	for i := 0; i < n; i++ {
		idx := i + 1
		g.Go(func() error {
			pages[idx-1] = a.page(ocrCtx, logger, doc, path, idx, ocrAvailable)
			return nil
		})
	}
	_ = g.Wait()

	out := entity.Document{Name: name, Path: path, Pages: pages}
	counts := out.MethodCounts()
	if counts[constants.MethodNone] > 0 && !ocrAvailable {
		logger.Warn("ocr not available, some pages have insufficient text", "pages_none", counts[constants.MethodNone])
	}
	logger.Info("document acquired",
		"pages", n,
		"native", counts[constants.MethodNative],
		"table", counts[constants.MethodTable],
		"ocr", counts[constants.MethodOCR],
		"none", counts[constants.MethodNone],
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (a *Acquirer) page(ctx context.Context, logger *slog.Logger, doc Doc, path string, idx int, ocrAvailable bool) entity.Page {
	logger = logger.With("page", idx)
	best := ""
	keep := func(s string) {
		if charCount(s) > charCount(best) {
			best = s
		}
	}

	native, err := doc.NativeText(idx)
	if err != nil {
		logger.Debug("native text failed", "error", err)
	}
	if a.Sufficient(native) {
		return entity.Page{Index: idx, Text: native, Method: constants.MethodNative}
	}
	keep(native)

	rows, err := doc.TableRows(idx)
	if err != nil {
		logger.Debug("table reconstruction failed", "error", err)
	}
	table := RowsText(rows)
	if a.Sufficient(table) {
		return entity.Page{Index: idx, Text: table, Method: constants.MethodTable, Rows: rows}
	}
	keep(table)

	if ocrAvailable {
		text, err := a.ocr.OCRPage(ctx, path, idx)
		switch {
		case errors.Is(err, common.ErrOCRTimeout):
			logger.Warn("ocr timed out", "timeout", a.cfg.OCRTimeout)
		case errors.Is(err, common.ErrOCRLanguage):
			logger.Error("ocr language data missing", "error", err)
		case err != nil:
			logger.Warn("ocr failed", "error", err)
		case a.Sufficient(text):
			return entity.Page{Index: idx, Text: text, Method: constants.MethodOCR}
		default:
			keep(text)
		}
	}

	logger.Debug("no method produced enough text", "chars", charCount(best))
	return entity.Page{Index: idx, Text: best, Method: constants.MethodNone, Rows: rows}
}
