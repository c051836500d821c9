package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/report"
	"github.com/joseph-ayodele/sediment-tracker/internal/repository"
)

type fakeAcquirer struct {
	fail map[string]error
}

func (f fakeAcquirer) Acquire(_ context.Context, path string) (entity.Document, error) {
	name := filepath.Base(path)
	if err := f.fail[name]; err != nil {
		return entity.Document{}, err
	}
	return entity.Document{Name: name, Path: path, Pages: []entity.Page{{Index: 1, Text: "OT 1234", Method: constants.MethodNative}}}, nil
}

type fakeFields struct{}

func (fakeFields) Extract(_ context.Context, doc entity.Document) (entity.Metadata, error) {
	if doc.Name == "noot.pdf" {
		return entity.Metadata{}, common.ErrMissingWorkOrder
	}
	return entity.Metadata{WorkOrder: doc.Name, SourceFile: doc.Name}, nil
}

type fakeDetector struct{}

func (fakeDetector) Detect(fileName string, _ []string) constants.ReportKind {
	if fileName == "oxigeno.pdf" {
		return constants.ReportOxygen
	}
	return constants.ReportSediment
}

type fakeSediment struct{}

func (fakeSediment) Kind() constants.ReportKind { return constants.ReportSediment }

func (fakeSediment) Extract(_ context.Context, doc entity.Document, md entity.Metadata) (entity.Result, error) {
	if doc.Name == "broken.pdf" {
		return entity.Result{}, errors.New("boom")
	}
	return entity.Result{
		Metadata:    md,
		Stations:    []entity.Station{{Code: "E1"}},
		NeedsReview: doc.Name == "review.pdf",
	}, nil
}

type fakeSink struct {
	mu       sync.Mutex
	saved    []string
	policies []constants.DuplicatePolicy
}

func (s *fakeSink) Save(_ context.Context, res entity.Result, policy constants.DuplicatePolicy) (repository.SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch res.Metadata.WorkOrder {
	case "dup.pdf":
		return repository.SaveResult{}, common.NewAppError(common.CodeDuplicate, "stored", common.ErrDuplicate)
	case "dberr.pdf":
		return repository.SaveResult{}, common.ErrDatabase
	}
	s.saved = append(s.saved, res.Metadata.WorkOrder)
	s.policies = append(s.policies, policy)
	return repository.SaveResult{Version: 1, Stations: len(res.Stations)}, nil
}

func newTestProcessor(sink Sink, opts Options) *Processor {
	acq := fakeAcquirer{fail: map[string]error{"corrupt.pdf": common.ErrDocumentOpen}}
	return NewProcessor(nil, acq, fakeFields{}, fakeDetector{}, report.NewRegistry(fakeSediment{}), sink, opts)
}

func TestProcessFileStatuses(t *testing.T) {
	tests := []struct {
		file  string
		want  constants.DocumentStatus
		stage Stage
	}{
		{"ok.pdf", constants.StatusOK, ""},
		{"review.pdf", constants.StatusPartial, ""},
		{"corrupt.pdf", constants.StatusFailed, StageAcquire},
		{"noot.pdf", constants.StatusFailed, StageFields},
		{"broken.pdf", constants.StatusFailed, StageExtract},
		{"dberr.pdf", constants.StatusFailed, StagePersist},
		{"dup.pdf", constants.StatusSkipped, ""},
		{"oxigeno.pdf", constants.StatusUnsupported, ""},
	}
	p := newTestProcessor(&fakeSink{}, Options{Policy: constants.PolicyUpdate})
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			out := p.ProcessFile(context.Background(), filepath.Join("in", tt.file))
			if out.Status != tt.want {
				t.Fatalf("status = %s, want %s (err %v)", out.Status, tt.want, out.Err)
			}
			if tt.stage == "" {
				return
			}
			var se *StageError
			if !errors.As(out.Err, &se) || se.Stage != tt.stage {
				t.Errorf("err = %v, want stage %s", out.Err, tt.stage)
			}
		})
	}
}

func TestProcessFileErrorsKeepSentinels(t *testing.T) {
	p := newTestProcessor(&fakeSink{}, Options{})
	if out := p.ProcessFile(context.Background(), "corrupt.pdf"); !errors.Is(out.Err, common.ErrDocumentOpen) {
		t.Errorf("err = %v, want ErrDocumentOpen", out.Err)
	}
	if out := p.ProcessFile(context.Background(), "noot.pdf"); !errors.Is(out.Err, common.ErrMissingWorkOrder) {
		t.Errorf("err = %v, want ErrMissingWorkOrder", out.Err)
	}
	var unsupported *report.UnsupportedError
	if out := p.ProcessFile(context.Background(), "oxigeno.pdf"); !errors.As(out.Err, &unsupported) {
		t.Errorf("err = %v, want UnsupportedError", out.Err)
	}
}

func TestDryRunSkipsSink(t *testing.T) {
	sink := &fakeSink{}
	p := newTestProcessor(sink, Options{DryRun: true})
	out := p.ProcessFile(context.Background(), "ok.pdf")
	if out.Status != constants.StatusOK || out.Saved != nil || out.Result == nil {
		t.Fatalf("outcome = %+v", out)
	}
	if len(sink.saved) != 0 {
		t.Errorf("sink called on dry run: %v", sink.saved)
	}
	if !newTestProcessor(nil, Options{}).DryRun() {
		t.Error("processor without sink must be a dry run")
	}
}

func TestRunBatch(t *testing.T) {
	sink := &fakeSink{}
	p := newTestProcessor(sink, Options{})
	paths := []string{"ok.pdf", "review.pdf", "corrupt.pdf", "dup.pdf", "oxigeno.pdf", "a.pdf"}

	outcomes, stats := p.RunBatch(context.Background(), paths, 3)
	if len(outcomes) != len(paths) {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Path != paths[i] {
			t.Errorf("outcome %d path = %s, want %s", i, o.Path, paths[i])
		}
	}
	want := Stats{Total: 6, Succeeded: 3, Partial: 1, Failed: 1, Skipped: 1, Unsupported: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
	if got := stats.SuccessRate(); got != 50 {
		t.Errorf("success rate = %v, want 50", got)
	}
	for _, pol := range sink.policies {
		if pol != constants.PolicySkip {
			t.Errorf("default policy = %s, want SKIP", pol)
		}
	}
}

func TestEmptyStats(t *testing.T) {
	if (Stats{}).SuccessRate() != 0 {
		t.Error("empty batch rate must be 0")
	}
}
