package patterns

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

func TestPriorityBeatsTextPosition(t *testing.T) {
	lib := Default()
	hit, ok := Cascade([]string{"Cat. 3 ... Categoría: 5"}, lib.Matchers(FieldCategory))
	if !ok {
		t.Fatal("no match")
	}
	if hit.Value != "5" || hit.Rule != 0 {
		t.Fatalf("hit = %+v, want value 5 from rule 0", hit)
	}
}

func TestPageOrderAcrossPages(t *testing.T) {
	lib := Default()
	pages := []string{"", "Cat. 2", "Categoría: 4"}
	hit, ok := Cascade(pages, lib.Matchers(FieldCategory))
	if !ok {
		t.Fatal("no match")
	}
	if diff := cmp.Diff(Hit{Value: "2", Page: 2, Rule: 1}, hit); diff != "" {
		t.Errorf("hit mismatch (-want +got):\n%s", diff)
	}
}

func TestAcceptRejectionFallsThrough(t *testing.T) {
	lib := Default()
	tests := []struct {
		name  string
		field Field
		text  string
		want  string
		ok    bool
	}{
		{"category out of range then valid", FieldCategory, "Categoría: 7\nCat. 3", "3", true},
		{"category out of range only", FieldCategory, "Categoría: 9", "", false},
		{"site name digits only", FieldSiteName, "Nombre Centro: 102345\nCentro: Punta Larga 2", "Punta Larga 2", true},
		{"site name not from running text", FieldSiteName, "Centro aeróbico en el sector norte", "", false},
		{"site name label mid-line", FieldSiteName, "Estado del Centro: Bahía", "", false},
		{"site code", FieldSiteCode, "Código Centro: 110234", "110234", true},
		{"monitoring label", FieldMonitoringType, "Tipo de Monitoreo: INFA Post Anaeróbica", "INFA Post Anaeróbica", true},
		{"monitoring bare", FieldMonitoringType, "Informe CPS 2023", "CPS", true},
		{"intake date", FieldIntakeDate, "Fecha ingreso laboratorio: 07/03/2023", "07/03/2023", true},
		{"sampling date", FieldSamplingDate, "Fecha Inicio/Fin: 01-03-2023", "01-03-2023", true},
		{"responsible", FieldResponsible, "Responsable Terreno: J. Pérez\n", "J. Pérez", true},
		{"condition", FieldSiteCondition, "El centro presenta estado anaeróbico", "anaeróbico", true},
		{"work order", FieldWorkOrder, "INFORME_OT-4567_SEDIMENTO", "4567", true},
		{"work order not inside word", FieldWorkOrder, "LOTE 1234", "", false},
		{"work order spelled out", FieldWorkOrder, "Orden de Trabajo: 812", "812", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := FirstMatch(tt.text, lib.Matchers(tt.field)...)
			if ok != tt.ok || got != tt.want {
				t.Errorf("FirstMatch = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSiteNameSkipsConditionProse(t *testing.T) {
	pages := []string{
		"Centro aeróbico según los resultados del muestreo",
		"ID/Nombre: Bahía Azul Código Centro: 110234",
	}
	hit, ok := Cascade(pages, Default().Matchers(FieldSiteName))
	if !ok || hit.Value != "Bahía Azul" {
		t.Errorf("Cascade = %+v, %v; want Bahía Azul from the labelled row", hit, ok)
	}
}

func TestLibraryIsCopied(t *testing.T) {
	rules := map[Field][]Rule{FieldCategory: {MustRule("c", `C(\d)`, nil)}}
	lib := New("t", rules, nil)
	rules[FieldCategory][0] = MustRule("x", `X(\d)`, nil)

	if got := lib.Rules(FieldCategory)[0].Name; got != "c" {
		t.Errorf("rule name = %q, want c", got)
	}
	if kws := lib.Keywords(constants.ReportSediment); len(kws) != 0 {
		t.Errorf("keywords = %v, want none", kws)
	}
}

func TestFold(t *testing.T) {
	if got := Fold("Materia Orgánica Total – Réplica"); got != "MATERIA ORGANICA TOTAL – REPLICA" {
		t.Errorf("Fold = %q", got)
	}
	if !ContainsWord("DATOS MOT E1", "MOT") {
		t.Error("MOT not found")
	}
	if ContainsWord("MOTOR", "MOT") {
		t.Error("MOT matched inside MOTOR")
	}
}
