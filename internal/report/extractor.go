package report

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

// Extractor turns an acquired document and its metadata into a result for one report kind.
type Extractor interface {
	Kind() constants.ReportKind
	Extract(ctx context.Context, doc entity.Document, md entity.Metadata) (entity.Result, error)
}

// UnsupportedError is returned for report kinds without an extractor.
type UnsupportedError struct {
	Kind constants.ReportKind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("report kind %s is not supported", e.Kind)
}

type unsupported struct {
	kind constants.ReportKind
}

// Unsupported returns an Extractor that always fails with UnsupportedError.
func Unsupported(kind constants.ReportKind) Extractor {
	return unsupported{kind: kind}
}

func (u unsupported) Kind() constants.ReportKind { return u.kind }

func (u unsupported) Extract(context.Context, entity.Document, entity.Metadata) (entity.Result, error) {
	return entity.Result{}, &UnsupportedError{Kind: u.kind}
}

// Registry maps report kinds to extractors. Kinds not registered are unsupported.
type Registry struct {
	byKind map[constants.ReportKind]Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byKind: make(map[constants.ReportKind]Extractor)}
	for _, e := range extractors {
		r.byKind[e.Kind()] = e
	}
	return r
}

func (r *Registry) For(kind constants.ReportKind) Extractor {
	if e, ok := r.byKind[kind]; ok {
		return e
	}
	return Unsupported(kind)
}
