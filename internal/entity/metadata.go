package entity

import "github.com/joseph-ayodele/sediment-tracker/constants"

// Metadata is the header record of one report. Only WorkOrder is mandatory;
// nil means the field could not be resolved.
type Metadata struct {
	WorkOrder      string                    `json:"work_order"`
	SiteCode       *string                   `json:"site_code,omitempty"`
	SiteName       *string                   `json:"site_name,omitempty"`
	Category       *int                      `json:"category,omitempty"`
	MonitoringType *constants.MonitoringType `json:"monitoring_type,omitempty"`
	SamplingDate   *string                   `json:"sampling_date,omitempty"` // YYYY-MM-DD
	IntakeDate     *string                   `json:"intake_date,omitempty"`   // YYYY-MM-DD
	Responsible    *string                   `json:"responsible,omitempty"`
	SiteCondition  *constants.SiteCondition  `json:"site_condition,omitempty"`
	ReportKind     constants.ReportKind      `json:"report_kind"`
	SourceFile     string                    `json:"source_file"`
	OCRFields      []string                  `json:"ocr_fields,omitempty"` // fields filled by the OCR metadata pass
}

// EffectiveMonitoringType falls back to INFA when the type is unknown.
func (m Metadata) EffectiveMonitoringType() constants.MonitoringType {
	if m.MonitoringType == nil {
		return constants.MonitoringINFA
	}
	return *m.MonitoringType
}
