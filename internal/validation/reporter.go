package validation

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

// Hard bounds (errors) and typical ranges (warnings).
var (
	organicHard  = common.InRange(0, 100)
	organicHigh  = common.AtMost(50)
	phHard       = common.InRange(0, 14)
	phMarine     = common.InRange(6.0, 8.5)
	ehHard       = common.InRange(-500, 500)
	tempTypical  = common.InRange(5, 20)
	eastingChile = common.InRange(166021, 833978)
	northChile   = common.InRange(1116915, 10000000)
	depthMax     = common.AtMost(300)
)

// ReplicatesPerStation is the expected sampling effort used for completeness.
const ReplicatesPerStation = 3

// Reporter collects non-fatal issues of a result. It never rejects data.
type Reporter struct {
	logger *slog.Logger
}

func NewReporter(logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger}
}

// Apply fills res.Issues and res.NeedsReview.
func (r *Reporter) Apply(res *entity.Result) {
	res.Issues = r.Validate(*res)
	res.NeedsReview = len(res.Issues) > 0
	if res.NeedsReview {
		r.logger.Info("document needs review",
			"work_order", res.Metadata.WorkOrder,
			"issues", len(res.Issues),
			"errors", countSeverity(res.Issues, entity.SeverityError),
		)
	}
}

// Validate returns every issue found in res.
func (r *Reporter) Validate(res entity.Result) []entity.Issue {
	var issues []entity.Issue
	add := func(sev entity.Severity, subject string, v *common.Validator) bool {
		for _, e := range v.Errors() {
			issues = append(issues, entity.Issue{Severity: sev, Field: e.Field, Subject: subject, Message: e.Message})
		}
		return v.HasErrors()
	}

	md := res.Metadata
	add(entity.SeverityWarning, "", common.NewValidator().
		Field("site_code", present(md.SiteCode), common.Required).
		Field("category", present(md.Category), common.Required).
		Field("monitoring_type", present(md.MonitoringType), common.Required).
		Field("intake_date", present(md.IntakeDate), common.Required).
		Field("site_condition", present(md.SiteCondition), common.Required))

	for _, m := range res.OrganicMatter {
		code := m.SampleCode()
		if !add(entity.SeverityError, code, common.NewValidator().Field("organic_matter", m.Percentage, organicHard)) {
			add(entity.SeverityWarning, code, common.NewValidator().Field("organic_matter", m.Percentage, organicHigh))
		}
	}

	for _, m := range res.PhRedox {
		code := m.SampleCode()
		if !add(entity.SeverityError, code, common.NewValidator().Field("ph", m.PH, phHard)) {
			add(entity.SeverityWarning, code, common.NewValidator().Field("ph", m.PH, phMarine))
		}
		add(entity.SeverityError, code, common.NewValidator().Field("eh", m.EhMV, ehHard))
		add(entity.SeverityWarning, code, common.NewValidator().Field("temperature", m.TemperatureC, tempTypical))
	}

	if len(res.OrganicMatter) == 0 {
		issues = append(issues, warning("organic_matter", "", "no organic matter records extracted"))
	} else if expected := len(res.Stations) * ReplicatesPerStation; expected > 0 && len(res.OrganicMatter)*2 < expected {
		issues = append(issues, warning("organic_matter", "",
			fmt.Sprintf("only %d of %d expected replicates extracted", len(res.OrganicMatter), expected)))
	}
	if len(res.PhRedox) == 0 {
		issues = append(issues, warning("ph_redox", "", "no pH/redox records extracted"))
	}

	for _, s := range res.Stations {
		add(entity.SeverityWarning, s.Code, common.NewValidator().
			Field("utm_easting", s.UTMEasting, eastingChile).
			Field("utm_northing", s.UTMNorthing, northChile).
			Field("depth_m", s.DepthM, depthMax))
	}

	if md.SiteCondition != nil && res.Diagnosis.TotalStations > 0 && *md.SiteCondition != res.Diagnosis.Condition() {
		issues = append(issues, warning("site_condition", "",
			fmt.Sprintf("reported %s but diagnosis is %s", *md.SiteCondition, res.Diagnosis.Condition())))
	}
	return issues
}

func warning(field, subject, msg string) entity.Issue {
	return entity.Issue{Severity: entity.SeverityWarning, Field: field, Subject: subject, Message: msg}
}

// present turns a nil pointer into an untyped nil so Required sees it as missing.
func present[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func countSeverity(issues []entity.Issue, sev entity.Severity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}
