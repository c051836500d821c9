package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

// Stats aggregates outcomes of a batch. Succeeded includes partial documents.
type Stats struct {
	Total       int `json:"total"`
	Succeeded   int `json:"succeeded"`
	Partial     int `json:"partial"`
	Failed      int `json:"failed"`
	Skipped     int `json:"skipped"`
	Unsupported int `json:"unsupported"`
}

func (s *Stats) Add(o Outcome) {
	s.Total++
	switch o.Status {
	case constants.StatusOK:
		s.Succeeded++
	case constants.StatusPartial:
		s.Succeeded++
		s.Partial++
	case constants.StatusSkipped:
		s.Skipped++
	case constants.StatusUnsupported:
		s.Unsupported++
	default:
		s.Failed++
	}
}

// SuccessRate is the percentage of succeeded documents, 0 for an empty batch.
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total) * 100
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("total", s.Total),
		slog.Int("succeeded", s.Succeeded),
		slog.Int("partial", s.Partial),
		slog.Int("failed", s.Failed),
		slog.Int("skipped", s.Skipped),
		slog.Int("unsupported", s.Unsupported),
		slog.Float64("success_rate", s.SuccessRate()),
	)
}

// RunBatch processes paths with at most workers documents in flight.
// Outcomes keep the order of paths. Documents share no state, so one
// failure never stops the others.
func (p *Processor) RunBatch(ctx context.Context, paths []string, workers int) ([]Outcome, Stats) {
	if workers <= 0 {
		workers = 1
	}
	outcomes := make([]Outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			outcomes[i] = p.ProcessFile(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	var stats Stats
	for _, o := range outcomes {
		stats.Add(o)
	}
	p.logger.Info("batch finished", "stats", stats)
	return outcomes, stats
}
