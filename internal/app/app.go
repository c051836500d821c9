package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/acquire"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/compliance"
	"github.com/joseph-ayodele/sediment-tracker/internal/fields"
	"github.com/joseph-ayodele/sediment-tracker/internal/ocr"
	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
	"github.com/joseph-ayodele/sediment-tracker/internal/report"
	"github.com/joseph-ayodele/sediment-tracker/internal/repository"
	"github.com/joseph-ayodele/sediment-tracker/internal/rules"
)

// Options are the per-run overrides the commands take from flags.
type Options struct {
	DryRun    bool
	Policy    constants.DuplicatePolicy // empty uses the configured policy
	RulesFile string                    // empty uses the configured file
}

// App holds the wired pipeline and the resources it owns.
type App struct {
	Config    common.Config
	Rules     rules.Set
	OCR       *ocr.Engine
	Acquirer  *acquire.Acquirer
	Processor *pipeline.Processor
	DB        *repository.DB // nil on dry runs
	Store     repository.WorkOrderRepository
	logger    *slog.Logger
}

// NewOCR builds the OCR engine from configuration.
func NewOCR(cfg common.OCRConfig, logger *slog.Logger) *ocr.Engine {
	return ocr.NewEngine(ocr.Config{
		Pdftoppm:    cfg.Pdftoppm,
		Tesseract:   cfg.Tesseract,
		Lang:        cfg.Lang,
		TessdataDir: cfg.TessdataDir,
		DPI:         cfg.DPI,
		PSM:         cfg.PSM,
	}, logger)
}

// NewAcquirer builds TextAcquisition over the PDF source and engine.
func NewAcquirer(cfg common.Config, engine *ocr.Engine, logger *slog.Logger) *acquire.Acquirer {
	return acquire.New(acquire.NewPDF(), engine, acquire.Config{
		MinChars:   cfg.Extraction.MinPageChars,
		Workers:    cfg.Extraction.PageWorkers,
		OCRTimeout: cfg.OCR.Timeout,
	}, logger)
}

// OpenStore opens and migrates the database.
func OpenStore(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.DSN,
		MaxConns:         cfg.MaxConns,
		MinConns:         cfg.MinConns,
		MaxConnLifetime:  cfg.MaxConnLifetime,
		MaxConnIdleTime:  cfg.MaxConnIdleTime,
		DialTimeout:      cfg.DialTimeout,
		StatementTimeout: cfg.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New validates cfg, loads the rules and wires every stage. The store is
// opened unless opts.DryRun is set.
func New(ctx context.Context, cfg common.Config, opts Options, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Policy != "" {
		cfg.Database.DuplicatePolicy = opts.Policy
	}
	if opts.RulesFile != "" {
		cfg.Extraction.RulesFile = opts.RulesFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, _ := constants.ParseDuplicatePolicy(string(cfg.Database.DuplicatePolicy))

	set, err := rules.Load(cfg.Extraction.RulesFile, logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfig, "load rules", err)
	}

	a := &App{Config: cfg, Rules: set, logger: logger}
	a.OCR = NewOCR(cfg.OCR, logger)
	if !a.OCR.Available() {
		logger.Warn("OCR tools not installed; scanned pages will have no text",
			"pdftoppm", cfg.OCR.Pdftoppm, "tesseract", cfg.OCR.Tesseract)
	}
	a.Acquirer = NewAcquirer(cfg, a.OCR, logger)

	fx := fields.New(set.Library, a.OCR, fields.Config{
		MinChars:    cfg.Extraction.MinPageChars,
		MetadataPSM: cfg.OCR.MetadataPSM,
		OCRTimeout:  cfg.OCR.Timeout,
	}, logger)
	classifier := compliance.NewClassifier(set.Thresholds, logger)
	registry := report.NewRegistry(
		report.NewSediment(classifier, logger),
		report.Unsupported(constants.ReportOxygen),
		report.Unsupported(constants.ReportVisual),
	)

	var sink pipeline.Sink
	if !opts.DryRun {
		a.DB, err = OpenStore(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		a.Store = repository.NewWorkOrderRepository(a.DB, set.Thresholds, logger)
		sink = a.Store
	}

	a.Processor = pipeline.NewProcessor(logger, a.Acquirer, fx, report.NewDetector(set.Library, logger), registry, sink,
		pipeline.Options{Policy: policy, DryRun: opts.DryRun})
	logger.Info("pipeline ready",
		"rules_version", set.Library.Version(),
		"policy", policy,
		"dry_run", opts.DryRun,
		"ocr_available", a.OCR.Available(),
	)
	return a, nil
}

// Close releases the store.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
