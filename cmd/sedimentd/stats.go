package main

import (
	"log/slog"
	"sync"

	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
)

type statsCounter struct {
	mu    sync.Mutex
	stats pipeline.Stats
}

func (s *statsCounter) add(o pipeline.Outcome, logger *slog.Logger) {
	s.mu.Lock()
	s.stats.Add(o)
	snap := s.stats
	s.mu.Unlock()
	logger.Debug("daemon totals", "stats", snap)
}

func (s *statsCounter) snapshot() pipeline.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
