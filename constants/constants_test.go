package constants

import "testing"

func TestCanonicalizeMonitoringType(t *testing.T) {
	tests := []struct {
		in   string
		want MonitoringType
		ok   bool
	}{
		{"INFA", MonitoringINFA, true},
		{"infa post anaerobica", MonitoringINFAPostAnaerobic, true},
		{"INFA-POSTANAEROBICA", MonitoringINFAPostAnaerobic, true},
		{"Caracterización CPS", MonitoringCPS, true},
		{"", "", false},
		{"OTRO", "", false},
	}
	for _, tt := range tests {
		got, ok := CanonicalizeMonitoringType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CanonicalizeMonitoringType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanonicalizeCondition(t *testing.T) {
	if c, _ := CanonicalizeCondition("Anaeróbica"); c != ConditionAnaerobic {
		t.Errorf("anaerobic = %q", c)
	}
	if c, _ := CanonicalizeCondition("aerobico"); c != ConditionAerobic {
		t.Errorf("aerobic = %q", c)
	}
	if _, ok := CanonicalizeCondition("n/a"); ok {
		t.Error("unknown condition accepted")
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := map[string]DuplicatePolicy{"": PolicySkip, "skip": PolicySkip, " Update ": PolicyUpdate, "VERSION": PolicyVersion}
	for in, want := range tests {
		if got, ok := ParseDuplicatePolicy(in); !ok || got != want {
			t.Errorf("ParseDuplicatePolicy(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseDuplicatePolicy("MERGE"); ok {
		t.Error("MERGE accepted")
	}
}

func TestIsAllowedExt(t *testing.T) {
	for ext, want := range map[string]bool{".pdf": true, "PDF": true, ".png": false, "": false} {
		if got := IsAllowedExt(ext); got != want {
			t.Errorf("IsAllowedExt(%q) = %v", ext, got)
		}
	}
}
