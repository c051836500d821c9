package report

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/patterns"
)

// DetectPages is how many leading pages keyword scoring reads.
const DetectPages = 3

var nameMarkers = []struct {
	kind    constants.ReportKind
	markers []string
}{
	{constants.ReportSediment, []string{"SEDIMENTO", "RL-10", "RL10"}},
	{constants.ReportOxygen, []string{"OXIGENO", "OXYGEN", "RL-20", "RL20"}},
	{constants.ReportVisual, []string{"VISUAL", "RL-30", "RL30"}},
}

// Detector decides which report family a document belongs to.
type Detector struct {
	lib    *patterns.Library
	logger *slog.Logger
}

func NewDetector(lib *patterns.Library, logger *slog.Logger) *Detector {
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{lib: lib, logger: logger}
}

// Detect looks at the file name first, then scores keywords over the first pages.
// Ties go to sediment, then oxygen, then visual; no hits means sediment.
func (d *Detector) Detect(fileName string, pages []string) constants.ReportKind {
	if kind, ok := KindFromName(fileName); ok {
		return kind
	}
	scores := d.Score(pages)
	best, bestScore := constants.ReportSediment, 0
	for _, kind := range constants.ReportKinds {
		if scores[kind] > bestScore {
			best, bestScore = kind, scores[kind]
		}
	}
	if bestScore == 0 {
		d.logger.Warn("no report keywords found, assuming sediment", "document", fileName)
	}
	return best
}

// KindFromName matches well-known markers in a file name.
func KindFromName(fileName string) (constants.ReportKind, bool) {
	upper := patterns.Fold(fileName)
	for _, nm := range nameMarkers {
		for _, m := range nm.markers {
			if strings.Contains(upper, m) {
				return nm.kind, true
			}
		}
	}
	return "", false
}

// Score sums keyword weights per kind over the first DetectPages pages.
func (d *Detector) Score(pages []string) map[constants.ReportKind]int {
	if len(pages) > DetectPages {
		pages = pages[:DetectPages]
	}
	text := patterns.Fold(strings.Join(pages, "\n"))
	scores := make(map[constants.ReportKind]int, len(constants.ReportKinds))
	for _, kind := range constants.ReportKinds {
		for _, kw := range d.lib.Keywords(kind) {
			for _, term := range kw.Terms {
				if patterns.ContainsWord(text, patterns.Fold(term)) {
					scores[kind] += kw.Weight
					break
				}
			}
		}
	}
	return scores
}
