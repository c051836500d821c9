package ocr

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "spa+eng"
	TessdataDir string
	DPI         int // rasterization DPI, default 300
	PSM         int // page segmentation mode for full pages, default 3
}

// Engine renders PDF pages with poppler and recognizes them with tesseract.
type Engine struct {
	cfg      Config
	runner   Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger

	availOnce sync.Once
	avail     bool
}

type Option func(*Engine)

// WithRunner replaces the command runner (tests).
func WithRunner(r Runner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithLookPath replaces binary discovery (tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.lookPath = fn
		}
	}
}

func NewEngine(cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "spa+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 3
	}
	e := &Engine{cfg: cfg, runner: execRunner{logger: logger}, lookPath: exec.LookPath, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Available reports whether both binaries can be found. The answer is cached.
func (e *Engine) Available() bool {
	e.availOnce.Do(func() {
		e.avail = true
		for _, bin := range []string{e.cfg.Pdftoppm, e.cfg.Tesseract} {
			if _, err := e.lookPath(bin); err != nil {
				e.logger.Warn("ocr binary not found, OCR disabled", "binary", bin, "error", err)
				e.avail = false
			}
		}
	})
	return e.avail
}

// OCRPage renders one page (1-based) and recognizes it with the configured PSM.
func (e *Engine) OCRPage(ctx context.Context, pdfPath string, page int) (string, error) {
	return e.OCRPageWithPSM(ctx, pdfPath, page, e.cfg.PSM)
}

// OCRPageWithPSM is OCRPage with an explicit page segmentation mode.
func (e *Engine) OCRPageWithPSM(ctx context.Context, pdfPath string, page, psm int) (string, error) {
	if !e.Available() {
		return "", common.ErrOCRUnavailable
	}
	img, cleanup, err := e.renderPage(ctx, pdfPath, page)
	if err != nil {
		return "", err
	}
	defer cleanup()
	return e.recognize(ctx, img, psm)
}
