package pipeline

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/report"
	"github.com/joseph-ayodele/sediment-tracker/internal/repository"
)

// Stage names a step of the per-document pipeline.
type Stage string

const (
	StageAcquire Stage = "acquire"
	StageFields  Stage = "fields"
	StageExtract Stage = "extract"
	StagePersist Stage = "persist"
)

// StageError is a fatal failure of one stage for one document.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Acquirer interface {
	Acquire(ctx context.Context, path string) (entity.Document, error)
}

type FieldExtractor interface {
	Extract(ctx context.Context, doc entity.Document) (entity.Metadata, error)
}

type KindDetector interface {
	Detect(fileName string, pages []string) constants.ReportKind
}

type Extractors interface {
	For(kind constants.ReportKind) report.Extractor
}

// Sink stores one result atomically. repository.WorkOrderRepository satisfies it.
type Sink interface {
	Save(ctx context.Context, res entity.Result, policy constants.DuplicatePolicy) (repository.SaveResult, error)
}
