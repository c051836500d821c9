package report

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

func TestDetect(t *testing.T) {
	d := NewDetector(nil, nil)
	tests := []struct {
		name  string
		file  string
		pages []string
		want  constants.ReportKind
	}{
		{"file name sediment", "OT-1234_SEDIMENTO.pdf", []string{"OXIGENO DISUELTO"}, constants.ReportSediment},
		{"file name oxygen code", "OT-1234_RL-20.pdf", nil, constants.ReportOxygen},
		{"file name visual", "ot1234 visual.pdf", nil, constants.ReportVisual},
		{"keywords oxygen", "OT-1234.pdf", []string{"Perfiles de oxígeno disuelto en columna de agua"}, constants.ReportOxygen},
		{"keywords visual", "OT-1234.pdf", []string{"Registro visual por transecta"}, constants.ReportVisual},
		{"tie prefers sediment", "OT-1234.pdf", []string{"MOT", "REGISTRO VISUAL"}, constants.ReportSediment},
		{"no hits", "OT-1234.pdf", []string{"nada"}, constants.ReportSediment},
		{"only first three pages", "OT-1234.pdf", []string{"a", "b", "c", "OXIGENO DISUELTO"}, constants.ReportSediment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.file, tt.pages); got != tt.want {
				t.Errorf("Detect = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRegistryUnsupported(t *testing.T) {
	r := NewRegistry(NewSediment(nil, nil))
	if r.For(constants.ReportSediment).Kind() != constants.ReportSediment {
		t.Fatal("sediment extractor not registered")
	}
	_, err := r.For(constants.ReportOxygen).Extract(context.Background(), entity.Document{}, entity.Metadata{})
	var ue *UnsupportedError
	if !errors.As(err, &ue) || ue.Kind != constants.ReportOxygen {
		t.Fatalf("err = %v, want UnsupportedError for OXIGENO", err)
	}
}

func TestSedimentExtract(t *testing.T) {
	text := `Materia Orgánica Total
E1-R1 0,50 10,50
E1-R2 0,50 9,50
E1-R3 0,50 10,00
E2-R1 0,50 12,00
E3-R1 0,50 11,00
pH/Redox
E1-R1 7,30 120
`
	doc := entity.Document{Name: "OT-1.pdf", Pages: []entity.Page{{Index: 1, Text: text, Method: constants.MethodNative}}}
	res, err := NewSediment(nil, nil).Extract(context.Background(), doc, entity.Metadata{WorkOrder: "1"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Metadata.ReportKind != constants.ReportSediment {
		t.Errorf("ReportKind = %s", res.Metadata.ReportKind)
	}
	if len(res.Stations) != 3 || len(res.OrganicMatter) != 5 || len(res.PhRedox) != 1 {
		t.Fatalf("stations=%d om=%d ph=%d", len(res.Stations), len(res.OrganicMatter), len(res.PhRedox))
	}
	d := res.Diagnosis
	if !d.IsAnaerobic || d.OrganicMatterViolations != 3 || d.MonitoringType != constants.MonitoringINFA {
		t.Errorf("diagnosis = %+v", d)
	}
	if !res.NeedsReview {
		t.Error("missing metadata must flag review")
	}
}
