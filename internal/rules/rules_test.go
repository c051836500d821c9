package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/patterns"
)

const custom = `
version: lab-b-2024
fields:
  category:
    - name: clase
      pattern: 'Clase[:\s]+(\d)'
keywords:
  VISUAL:
    - terms: [FILMACION]
      weight: 5
thresholds:
  CPS:
    organic_matter_max: 7.5
    ph_min: 7.0
    eh_min: 40
`

func TestLoadCustomRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatal(err)
	}
	set, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Library.Version() != "lab-b-2024" {
		t.Errorf("version = %q", set.Library.Version())
	}

	v, _, ok := patterns.FirstMatch("Clase: 4", set.Library.Matchers(patterns.FieldCategory)...)
	if !ok || v != "4" {
		t.Errorf("custom category rule = %q, %v", v, ok)
	}
	if _, _, ok := patterns.FirstMatch("Clase: 8", set.Library.Matchers(patterns.FieldCategory)...); ok {
		t.Error("custom category rule must keep the 1-5 check")
	}
	if _, _, ok := patterns.FirstMatch("Código Centro: 110234", set.Library.Matchers(patterns.FieldSiteCode)...); !ok {
		t.Error("fields not in the file keep the built-in rules")
	}

	if kws := set.Library.Keywords(constants.ReportVisual); len(kws) != 1 || kws[0].Weight != 5 {
		t.Errorf("visual keywords = %+v", kws)
	}
	if len(set.Library.Keywords(constants.ReportSediment)) == 0 {
		t.Error("sediment keywords lost")
	}
	if got := set.Thresholds.For(constants.MonitoringCPS).OrganicMatterMax; got != 7.5 {
		t.Errorf("CPS max = %v", got)
	}
	if got := set.Thresholds.For(constants.MonitoringINFA).OrganicMatterMax; got != 9.0 {
		t.Errorf("INFA max = %v", got)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown field":  "fields:\n  colour:\n    - pattern: 'x'\n",
		"bad threshold":  "thresholds:\n  INFA:\n    organic_matter_max: -1\n    ph_min: 7\n    eh_min: 50\n",
		"bad regexp":     "fields:\n  category:\n    - pattern: '('\n",
		"unknown report": "keywords:\n  ZOO:\n    - terms: [x]\n      weight: 1\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEmptyPathIsDefault(t *testing.T) {
	set, err := Load("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(set.Library.Version(), "builtin") {
		t.Errorf("version = %q", set.Library.Version())
	}
}
