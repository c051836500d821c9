package constants

import (
	"strings"
)

// MonitoringType is the regulatory monitoring regime a report was produced under.
type MonitoringType string

const (
	MonitoringINFA              MonitoringType = "INFA"
	MonitoringINFAPostAnaerobic MonitoringType = "INFA-POSTANAEROBICA"
	MonitoringCPS               MonitoringType = "CPS"
)

var allMonitoringTypes = []MonitoringType{
	MonitoringINFA,
	MonitoringINFAPostAnaerobic,
	MonitoringCPS,
}

func MonitoringTypesAsStrings() []string {
	result := make([]string, len(allMonitoringTypes))
	for i, mt := range allMonitoringTypes {
		result[i] = string(mt)
	}
	return result
}

// CanonicalizeMonitoringType maps free text to a monitoring type by keyword precedence:
// the post-anaerobic keyword wins over INFA, which wins over CPS.
func CanonicalizeMonitoringType(input string) (MonitoringType, bool) {
	if strings.TrimSpace(input) == "" {
		return "", false
	}
	upper := strings.ToUpper(input)

	switch {
	case strings.Contains(upper, "POST"):
		return MonitoringINFAPostAnaerobic, true
	case strings.Contains(upper, "INFA"):
		return MonitoringINFA, true
	case strings.Contains(upper, "CPS"):
		return MonitoringCPS, true
	}
	return "", false
}

// SiteCondition is the oxygen state of a farming site.
type SiteCondition string

const (
	ConditionAerobic   SiteCondition = "AEROBIC"
	ConditionAnaerobic SiteCondition = "ANAEROBIC"
)

// CanonicalizeCondition matches by substring; ANAER is checked before AER.
func CanonicalizeCondition(input string) (SiteCondition, bool) {
	upper := strings.ToUpper(input)
	switch {
	case strings.Contains(upper, "ANAER"):
		return ConditionAnaerobic, true
	case strings.Contains(upper, "AER"):
		return ConditionAerobic, true
	}
	return "", false
}
