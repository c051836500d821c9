package measurements

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }

const report = `INFORME SEDIMENTO
Tabla 1. Identificación de estaciones
Estación UTM Este UTM Norte Profundidad (m)
E1 652.345 5.412.345 15,5
E2 652400 5412400 22
Tabla 2. Materia Orgánica Total
Código Peso muestra (g) MOT (%)
E1-R1 0,512 11,34
E1-R2 0,498 10,20
E1 - R3 16,2 180,4
Continuación tabla 2
E2-R1 0,505 4,10
E02-R1 0,600 5,00
Tabla 3. pH / Redox
Código pH Temp Redox Eh
E1-R1 7,15 12,3 -250 -45
E3-R1 7,85 11,0 -120 95
E4-R1 sin muestra
Anexo 1
E5-R1 7,00 -300 20
`

func TestExtract(t *testing.T) {
	m := New(nil).Extract(report)

	wantLoc := []entity.Station{
		{Code: "E1", UTMEasting: ip(652345), UTMNorthing: ip(5412345), DepthM: fp(15.5)},
		{Code: "E2", UTMEasting: ip(652400), UTMNorthing: ip(5412400), DepthM: fp(22)},
	}
	if diff := cmp.Diff(wantLoc, m.Locations); diff != "" {
		t.Errorf("locations (-want +got):\n%s", diff)
	}

	wantOM := []entity.OrganicMatter{
		{Station: "E1", Replica: 1, WeightG: 0.512, Percentage: 11.34},
		{Station: "E1", Replica: 2, WeightG: 0.498, Percentage: 10.2},
		{Station: "E2", Replica: 1, WeightG: 0.505, Percentage: 4.1},
	}
	if diff := cmp.Diff(wantOM, m.OrganicMatter); diff != "" {
		t.Errorf("organic matter (-want +got):\n%s", diff)
	}

	wantPH := []entity.PhRedox{
		{Station: "E1", Replica: 1, PH: fp(7.15), TemperatureC: fp(12.3), RedoxMV: ip(-250), EhMV: ip(-45)},
		{Station: "E3", Replica: 1, PH: fp(7.85), TemperatureC: fp(11.0), RedoxMV: ip(-120), EhMV: ip(95)},
	}
	if diff := cmp.Diff(wantPH, m.PhRedox); diff != "" {
		t.Errorf("ph/redox (-want +got):\n%s", diff)
	}

	stations := ConsolidateStations(m)
	codes := make([]string, len(stations))
	for i, s := range stations {
		codes[i] = s.Code
	}
	if diff := cmp.Diff([]string{"E1", "E2", "E3"}, codes); diff != "" {
		t.Errorf("stations (-want +got):\n%s", diff)
	}
	if stations[2].UTMEasting != nil {
		t.Error("E3 has no location row and must keep nil coordinates")
	}
}

func TestParseOrganicMatterLine(t *testing.T) {
	got, ok := ParseOrganicMatterLine("E3-R2 0.512 11.34")
	if !ok {
		t.Fatal("expected a record")
	}
	want := entity.OrganicMatter{Station: "E3", Replica: 2, WeightG: 0.512, Percentage: 11.34}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record (-want +got):\n%s", diff)
	}

	if _, ok := ParseOrganicMatterLine("E3-R2 16.2 180.4"); ok {
		t.Error("implausible values must not yield a record")
	}
	if _, ok := ParseOrganicMatterLine("E3-R2 0.512"); ok {
		t.Error("record without percentage must be dropped")
	}
}

func TestParsePhRedoxLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want entity.PhRedox
		ok   bool
	}{
		{
			name: "ph only",
			line: "E2-R3 7,40",
			want: entity.PhRedox{Station: "E2", Replica: 3, PH: fp(7.4)},
			ok:   true,
		},
		{
			name: "eh only",
			line: "E2_R1 120",
			want: entity.PhRedox{Station: "E2", Replica: 1, EhMV: ip(120)},
			ok:   true,
		},
		{
			name: "redox is not reused as eh",
			line: "E1-R1 -150",
			ok:   false,
		},
		{
			name: "no code",
			line: "Promedio 7,20 -100",
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePhRedoxLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v (%+v)", ok, tt.ok, got)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("record (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeStation(t *testing.T) {
	for in, want := range map[string]string{"E01": "E1", "e3": "E3", "12": "E12", "X1": "X1"} {
		if got := NormalizeStation(in); got != want {
			t.Errorf("NormalizeStation(%q) = %q, want %q", in, got, want)
		}
	}
}
