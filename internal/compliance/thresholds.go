package compliance

import (
	"fmt"
	"sort"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

// Thresholds is the immutable regulatory limit table, keyed by monitoring type.
// Unknown types resolve to the INFA limits.
type Thresholds struct {
	byType map[constants.MonitoringType]entity.Thresholds
}

// DefaultThresholds returns the regulatory limits.
func DefaultThresholds() Thresholds {
	return Thresholds{byType: map[constants.MonitoringType]entity.Thresholds{
		constants.MonitoringINFA:              {OrganicMatterMax: 9.0, PHMin: 7.1, EhMin: 50},
		constants.MonitoringINFAPostAnaerobic: {OrganicMatterMax: 8.0, PHMin: 7.1, EhMin: 75},
		constants.MonitoringCPS:               {OrganicMatterMax: 9.0, PHMin: 7.1, EhMin: 50},
	}}
}

// NewThresholds validates and copies a custom table. INFA is required since it is the fallback.
func NewThresholds(table map[constants.MonitoringType]entity.Thresholds) (Thresholds, error) {
	if _, ok := table[constants.MonitoringINFA]; !ok {
		return Thresholds{}, fmt.Errorf("thresholds: %s entry is required", constants.MonitoringINFA)
	}
	cp := make(map[constants.MonitoringType]entity.Thresholds, len(table))
	for mt, th := range table {
		if th.OrganicMatterMax <= 0 {
			return Thresholds{}, fmt.Errorf("thresholds: %s organic_matter_max must be positive", mt)
		}
		cp[mt] = th
	}
	return Thresholds{byType: cp}, nil
}

// Merge overlays custom entries onto t.
func (t Thresholds) Merge(overrides map[constants.MonitoringType]entity.Thresholds) (Thresholds, error) {
	merged := make(map[constants.MonitoringType]entity.Thresholds, len(t.byType)+len(overrides))
	for mt, th := range t.byType {
		merged[mt] = th
	}
	for mt, th := range overrides {
		merged[mt] = th
	}
	return NewThresholds(merged)
}

// Resolve returns the effective type and its limits.
func (t Thresholds) Resolve(mt constants.MonitoringType) (constants.MonitoringType, entity.Thresholds) {
	if th, ok := t.byType[mt]; ok {
		return mt, th
	}
	return constants.MonitoringINFA, t.byType[constants.MonitoringINFA]
}

// For returns the limits of mt.
func (t Thresholds) For(mt constants.MonitoringType) entity.Thresholds {
	_, th := t.Resolve(mt)
	return th
}

// Types lists the configured monitoring types in name order.
func (t Thresholds) Types() []constants.MonitoringType {
	out := make([]constants.MonitoringType, 0, len(t.byType))
	for mt := range t.byType {
		out = append(out, mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OrganicFlags tells whether one replicate stays within the INFA and the
// post-anaerobic organic-matter limits.
type OrganicFlags struct {
	WithinINFA          bool
	WithinPostAnaerobic bool
}

func (t Thresholds) OrganicFlags(percentage float64) OrganicFlags {
	return OrganicFlags{
		WithinINFA:          percentage <= t.For(constants.MonitoringINFA).OrganicMatterMax,
		WithinPostAnaerobic: percentage <= t.For(constants.MonitoringINFAPostAnaerobic).OrganicMatterMax,
	}
}

// PhRedoxFlags are per-replicate checks; nil means the value was not measured.
type PhRedoxFlags struct {
	PHOK    *bool
	EhOK    *bool
	JointOK *bool
}

// PhRedoxFlags evaluates one replicate against the limits of mt. The joint check
// fails only when both pH and Eh are present and both are below their minimum.
func (t Thresholds) PhRedoxFlags(r entity.PhRedox, mt constants.MonitoringType) PhRedoxFlags {
	th := t.For(mt)
	var f PhRedoxFlags
	if r.PH != nil {
		ok := *r.PH >= th.PHMin
		f.PHOK = &ok
	}
	if r.EhMV != nil {
		ok := float64(*r.EhMV) >= th.EhMin
		f.EhOK = &ok
	}
	if f.PHOK != nil || f.EhOK != nil {
		joint := !(f.PHOK != nil && f.EhOK != nil && !*f.PHOK && !*f.EhOK)
		f.JointOK = &joint
	}
	return f
}
