package entity

import "fmt"

// Station is a sampling location; coordinates come from the location table when present.
type Station struct {
	Code        string   `json:"code"`
	UTMEasting  *int     `json:"utm_easting,omitempty"`
	UTMNorthing *int     `json:"utm_northing,omitempty"`
	DepthM      *float64 `json:"depth_m,omitempty"`
}

// OrganicMatter is one replicate of the organic-matter table.
type OrganicMatter struct {
	Station    string  `json:"station"`
	Replica    int     `json:"replica"`
	WeightG    float64 `json:"weight_g"`
	Percentage float64 `json:"percentage"`
}

func (m OrganicMatter) SampleCode() string {
	return SampleCode(m.Station, m.Replica)
}

// PhRedox is one replicate of the pH/redox table. Any value may be nil.
type PhRedox struct {
	Station      string   `json:"station"`
	Replica      int      `json:"replica"`
	PH           *float64 `json:"ph,omitempty"`
	RedoxMV      *int     `json:"redox_mv,omitempty"`
	EhMV         *int     `json:"eh_mv,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
}

func (m PhRedox) SampleCode() string {
	return SampleCode(m.Station, m.Replica)
}

// SampleCode renders the canonical replicate code, e.g. E3-R2.
func SampleCode(station string, replica int) string {
	return fmt.Sprintf("%s-R%d", station, replica)
}

// Measurements is the raw output of table parsing.
type Measurements struct {
	Locations     []Station       `json:"locations"`
	OrganicMatter []OrganicMatter `json:"organic_matter"`
	PhRedox       []PhRedox       `json:"ph_redox"`
}
