package report

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/compliance"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/measurements"
	"github.com/joseph-ayodele/sediment-tracker/internal/validation"
)

// Sediment handles sediment (organic matter, pH/redox) reports.
type Sediment struct {
	measurements *measurements.Extractor
	classifier   *compliance.Classifier
	reporter     *validation.Reporter
	logger       *slog.Logger
}

func NewSediment(classifier *compliance.Classifier, logger *slog.Logger) *Sediment {
	if logger == nil {
		logger = slog.Default()
	}
	if classifier == nil {
		classifier = compliance.NewClassifier(compliance.DefaultThresholds(), logger)
	}
	return &Sediment{
		measurements: measurements.New(logger),
		classifier:   classifier,
		reporter:     validation.NewReporter(logger),
		logger:       logger,
	}
}

func (s *Sediment) Kind() constants.ReportKind { return constants.ReportSediment }

// Extract parses measurements, averages them per station, classifies the site
// and attaches validation issues.
func (s *Sediment) Extract(_ context.Context, doc entity.Document, md entity.Metadata) (entity.Result, error) {
	md.ReportKind = constants.ReportSediment
	m := s.measurements.Extract(doc.FullText())
	stations := measurements.ConsolidateStations(m)
	om := compliance.OrganicAverages(m.OrganicMatter)
	ph := compliance.PhRedoxAverages(m.PhRedox)

	res := entity.Result{
		Metadata:        md,
		Stations:        stations,
		OrganicMatter:   m.OrganicMatter,
		PhRedox:         m.PhRedox,
		OrganicAverages: om,
		PhRedoxAverages: ph,
		Diagnosis:       s.classifier.Classify(stations, om, ph, md.EffectiveMonitoringType()),
	}
	s.reporter.Apply(&res)

	s.logger.Info("sediment report extracted",
		"document", doc.Name,
		"work_order", md.WorkOrder,
		"stations", len(stations),
		"organic_matter", len(m.OrganicMatter),
		"ph_redox", len(m.PhRedox),
		"condition", res.Diagnosis.Condition(),
		"needs_review", res.NeedsReview,
	)
	return res, nil
}
