package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/report"
	"github.com/joseph-ayodele/sediment-tracker/internal/repository"
)

// Outcome is the result of processing one document.
type Outcome struct {
	Path     string
	Status   constants.DocumentStatus
	Kind     constants.ReportKind
	Result   *entity.Result
	Saved    *repository.SaveResult // nil on dry runs and failures
	Err      error
	Duration time.Duration
}

// Options control persistence.
type Options struct {
	Policy constants.DuplicatePolicy
	DryRun bool
}

// Processor coordinates acquisition, field extraction, kind detection,
// per-kind extraction and persistence for one document at a time.
type Processor struct {
	logger     *slog.Logger
	acquirer   Acquirer
	fields     FieldExtractor
	detector   KindDetector
	extractors Extractors
	sink       Sink
	opts       Options
}

// NewProcessor builds a Processor. sink may be nil only for dry runs.
func NewProcessor(logger *slog.Logger, acquirer Acquirer, fields FieldExtractor, detector KindDetector, extractors Extractors, sink Sink, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Policy == "" {
		opts.Policy = constants.PolicySkip
	}
	if sink == nil {
		opts.DryRun = true
	}
	return &Processor{
		logger:     logger,
		acquirer:   acquirer,
		fields:     fields,
		detector:   detector,
		extractors: extractors,
		sink:       sink,
		opts:       opts,
	}
}

func (p *Processor) DryRun() bool { return p.opts.DryRun }

// ProcessFile runs every stage for path. Failures are reported in the
// Outcome; the error of a FAILED outcome is a *StageError.
func (p *Processor) ProcessFile(ctx context.Context, path string) Outcome {
	start := time.Now()
	name := filepath.Base(path)
	ctx = common.WithDocument(ctx, name)
	logger := p.logger.With("document", name)
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	out := p.process(ctx, logger, path)
	out.Path = path
	out.Duration = time.Since(start)

	attrs := []any{"status", out.Status, "duration_ms", out.Duration.Milliseconds()}
	if out.Err != nil {
		attrs = append(attrs, "error", out.Err)
		if code := common.ErrorCode(out.Err); code != "" {
			attrs = append(attrs, "error_code", code)
		}
	}
	switch out.Status {
	case constants.StatusFailed:
		logger.Error("document failed", attrs...)
	case constants.StatusSkipped, constants.StatusUnsupported:
		logger.Warn("document not stored", attrs...)
	default:
		logger.Info("document processed", attrs...)
	}
	return out
}

func (p *Processor) process(ctx context.Context, logger *slog.Logger, path string) Outcome {
	doc, err := p.acquirer.Acquire(ctx, path)
	if err != nil {
		return failed(StageAcquire, err)
	}
	logger.Debug("extract stage success", "pages", len(doc.Pages))

	md, err := p.fields.Extract(ctx, doc)
	if err != nil {
		return failed(StageFields, err)
	}
	logger = logger.With("work_order", md.WorkOrder)

	kind := p.detector.Detect(doc.Name, doc.PageTexts())
	md.ReportKind = kind
	logger.Debug("report kind detected", "kind", kind)

	res, err := p.extractors.For(kind).Extract(ctx, doc, md)
	if err != nil {
		var unsupported *report.UnsupportedError
		if errors.As(err, &unsupported) {
			return Outcome{Status: constants.StatusUnsupported, Kind: kind, Err: err}
		}
		out := failed(StageExtract, err)
		out.Kind = kind
		return out
	}

	out := Outcome{Status: constants.StatusOK, Kind: kind, Result: &res}
	if res.NeedsReview {
		out.Status = constants.StatusPartial
	}

	if p.opts.DryRun {
		logger.Info("dry run: not stored",
			"stations", len(res.Stations),
			"organic_matter", len(res.OrganicMatter),
			"ph_redox", len(res.PhRedox),
		)
		return out
	}

	saved, err := p.sink.Save(ctx, res, p.opts.Policy)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			out.Status = constants.StatusSkipped
			out.Err = err
			return out
		}
		f := failed(StagePersist, err)
		f.Kind, f.Result = kind, &res
		return f
	}
	out.Saved = &saved
	return out
}

func failed(stage Stage, err error) Outcome {
	return Outcome{Status: constants.StatusFailed, Err: &StageError{Stage: stage, Err: err}}
}
