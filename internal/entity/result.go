package entity

import "github.com/joseph-ayodele/sediment-tracker/constants"

// OrganicAverage is the per-station mean organic-matter percentage.
type OrganicAverage struct {
	Station    string  `json:"station"`
	Percentage float64 `json:"percentage"`
	Replicas   int     `json:"replicas"`
}

// PhRedoxAverage holds per-station means; a nil mean had no values.
type PhRedoxAverage struct {
	Station      string   `json:"station"`
	PH           *float64 `json:"ph,omitempty"`
	EhMV         *float64 `json:"eh_mv,omitempty"`
	RedoxMV      *float64 `json:"redox_mv,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	Replicas     int      `json:"replicas"`
}

// Thresholds are the regulatory limits for one monitoring type.
type Thresholds struct {
	OrganicMatterMax float64 `json:"organic_matter_max" yaml:"organic_matter_max"`
	PHMin            float64 `json:"ph_min" yaml:"ph_min"`
	EhMin            float64 `json:"eh_min" yaml:"eh_min"`
}

// Diagnosis is computed once per document and never mutated afterwards.
type Diagnosis struct {
	IsAnaerobic             bool                     `json:"is_anaerobic"`
	OrganicMatterViolations int                      `json:"organic_matter_violations"`
	PhRedoxViolations       int                      `json:"ph_redox_joint_violations"`
	ViolationThreshold      int                      `json:"violation_threshold"`
	TotalStations           int                      `json:"total_stations"`
	MonitoringType          constants.MonitoringType `json:"monitoring_type"`
	Thresholds              Thresholds               `json:"thresholds_applied"`
}

// Condition renders the diagnosis as a site condition.
func (d Diagnosis) Condition() constants.SiteCondition {
	if d.IsAnaerobic {
		return constants.ConditionAnaerobic
	}
	return constants.ConditionAerobic
}

type Severity string

const (
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Issue is one non-fatal finding reported during validation.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Subject  string   `json:"subject,omitempty"` // sample or station code
	Message  string   `json:"message"`
}

// Result is the validated bundle for one document, ready for persistence.
type Result struct {
	Metadata        Metadata         `json:"metadata"`
	Stations        []Station        `json:"stations"`
	OrganicMatter   []OrganicMatter  `json:"organic_matter"`
	PhRedox         []PhRedox        `json:"ph_redox"`
	OrganicAverages []OrganicAverage `json:"organic_averages"`
	PhRedoxAverages []PhRedoxAverage `json:"ph_redox_averages"`
	Diagnosis       Diagnosis        `json:"diagnosis"`
	Issues          []Issue          `json:"issues,omitempty"`
	NeedsReview     bool             `json:"needs_review"`
}

// OrganicAverageFor returns the average of a station, if any.
func (r Result) OrganicAverageFor(station string) (OrganicAverage, bool) {
	for _, a := range r.OrganicAverages {
		if a.Station == station {
			return a, true
		}
	}
	return OrganicAverage{}, false
}

// PhRedoxAverageFor returns the pH/redox averages of a station, if any.
func (r Result) PhRedoxAverageFor(station string) (PhRedoxAverage, bool) {
	for _, a := range r.PhRedoxAverages {
		if a.Station == station {
			return a, true
		}
	}
	return PhRedoxAverage{}, false
}
