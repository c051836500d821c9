package compliance

import (
	"log/slog"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

// MinViolations is the floor of the violation threshold.
const MinViolations = 3

// ViolationRatio is the share of stations that must violate, in tenths.
const ViolationRatio = 3

// ViolationThreshold is max(3, floor(n*0.30)); zero stations give 0.
func ViolationThreshold(stations int) int {
	if stations <= 0 {
		return 0
	}
	t := stations * ViolationRatio / 10
	if t < MinViolations {
		return MinViolations
	}
	return t
}

// Classifier produces the aerobic/anaerobic diagnosis of a site.
type Classifier struct {
	thresholds Thresholds
	logger     *slog.Logger
}

func NewClassifier(thresholds Thresholds, logger *slog.Logger) *Classifier {
	if thresholds.byType == nil {
		thresholds = DefaultThresholds()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{thresholds: thresholds, logger: logger}
}

func (c *Classifier) Thresholds() Thresholds { return c.thresholds }

// Classify counts violating stations against the limits of mt.
func (c *Classifier) Classify(stations []entity.Station, organic []entity.OrganicAverage, phRedox []entity.PhRedoxAverage, mt constants.MonitoringType) entity.Diagnosis {
	effective, th := c.thresholds.Resolve(mt)
	d := entity.Diagnosis{
		TotalStations:  len(stations),
		MonitoringType: effective,
		Thresholds:     th,
	}
	if len(stations) == 0 {
		return d
	}
	d.ViolationThreshold = ViolationThreshold(len(stations))

	om := make(map[string]entity.OrganicAverage, len(organic))
	for _, a := range organic {
		om[a.Station] = a
	}
	ph := make(map[string]entity.PhRedoxAverage, len(phRedox))
	for _, a := range phRedox {
		ph[a.Station] = a
	}

	for _, s := range stations {
		if a, ok := om[s.Code]; ok && a.Percentage > th.OrganicMatterMax {
			d.OrganicMatterViolations++
		}
		if a, ok := ph[s.Code]; ok && a.PH != nil && a.EhMV != nil &&
			*a.PH < th.PHMin && *a.EhMV < th.EhMin {
			d.PhRedoxViolations++
		}
	}
	d.IsAnaerobic = d.OrganicMatterViolations >= d.ViolationThreshold ||
		d.PhRedoxViolations >= d.ViolationThreshold

	c.logger.Debug("site classified",
		"monitoring_type", effective,
		"stations", d.TotalStations,
		"organic_matter_violations", d.OrganicMatterViolations,
		"ph_redox_violations", d.PhRedoxViolations,
		"threshold", d.ViolationThreshold,
		"condition", d.Condition(),
	)
	return d
}
