package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/compliance"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

func ptr[T any](v T) *T { return &v }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	return openTestDSN(t, filepath.Join(t.TempDir(), "test.db"))
}

func openTestDSN(t *testing.T, dsn string) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db.HealthCheck(ctx, 0); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	return db
}

func sampleResult(wo string) entity.Result {
	return entity.Result{
		Metadata: entity.Metadata{
			WorkOrder:      wo,
			SiteCode:       ptr("110234"),
			SiteName:       ptr("Punta Larga"),
			Category:       ptr(3),
			MonitoringType: ptr(constants.MonitoringINFA),
			ReportKind:     constants.ReportSediment,
			SourceFile:     "OT-" + wo + ".pdf",
		},
		Stations: []entity.Station{{Code: "E1", UTMEasting: ptr(652345), UTMNorthing: ptr(5412345), DepthM: ptr(15.5)}},
		OrganicMatter: []entity.OrganicMatter{
			{Station: "E1", Replica: 1, WeightG: 0.5, Percentage: 8.5},
			{Station: "E1", Replica: 2, WeightG: 0.5, Percentage: 9.5},
		},
		// E9 is not in the station set and must still be stored
		PhRedox: []entity.PhRedox{
			{Station: "E1", Replica: 1, PH: ptr(7.0), EhMV: ptr(20)},
			{Station: "E9", Replica: 1, PH: ptr(7.5)},
		},
		OrganicAverages: []entity.OrganicAverage{{Station: "E1", Percentage: 9, Replicas: 2}},
		PhRedoxAverages: []entity.PhRedoxAverage{{Station: "E1", PH: ptr(7.0), EhMV: ptr(20.0), Replicas: 1}},
		Diagnosis: entity.Diagnosis{
			TotalStations: 1, ViolationThreshold: 3, MonitoringType: constants.MonitoringINFA,
			Thresholds: entity.Thresholds{OrganicMatterMax: 9, PHMin: 7.1, EhMin: 50},
		},
		Issues:      []entity.Issue{{Severity: entity.SeverityWarning, Field: "intake_date", Message: "is required"}},
		NeedsReview: true,
	}
}

func TestSavePolicies(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkOrderRepository(openTestDB(t), compliance.DefaultThresholds(), nil)

	first, err := repo.Save(ctx, sampleResult("1234"), constants.PolicySkip)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.WorkOrderID == uuid.Nil {
		t.Error("WorkOrderID not set")
	}
	if first.Version != 1 || first.Stations != 1 || first.Organic != 2 || first.PhRedox != 2 || first.Issues != 1 {
		t.Errorf("first save = %+v", first)
	}

	if _, err := repo.Save(ctx, sampleResult("1234"), constants.PolicySkip); !errors.Is(err, common.ErrDuplicate) {
		t.Fatalf("SKIP err = %v, want ErrDuplicate", err)
	}

	v2, err := repo.Save(ctx, sampleResult("1234"), constants.PolicyVersion)
	if err != nil {
		t.Fatalf("Save VERSION: %v", err)
	}
	if v2.Version != 2 {
		t.Errorf("VERSION saved version %d, want 2", v2.Version)
	}

	upd, err := repo.Save(ctx, sampleResult("1234"), constants.PolicyUpdate)
	if err != nil {
		t.Fatalf("Save UPDATE: %v", err)
	}
	if upd.Version != 2 || upd.Replaced != 2 {
		t.Errorf("UPDATE = %+v, want version 2 replacing 2", upd)
	}

	versions, err := repo.Versions(ctx, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{2}, versions); diff != "" {
		t.Errorf("versions (-want +got):\n%s", diff)
	}

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"sites": 1, "work_orders": 1, "stations": 2, "organic_matter": 2, "ph_redox": 2, "validation_issues": 1,
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts after UPDATE (-want +got):\n%s", diff)
	}
}

func mustCounts(t *testing.T, repo WorkOrderRepository) map[string]int {
	t.Helper()
	counts, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return counts
}

func TestSaveRollsBackOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkOrderRepository(openTestDB(t), compliance.DefaultThresholds(), nil)

	// the second E1 violates the per-work-order station uniqueness after the
	// site, work order and first station rows are already written
	bad := sampleResult("1234")
	bad.Stations = append(bad.Stations, entity.Station{Code: "E1"})

	_, err := repo.Save(ctx, bad, constants.PolicySkip)
	if !errors.Is(err, common.ErrDatabase) {
		t.Fatalf("err = %v, want ErrDatabase", err)
	}
	want := map[string]int{
		"sites": 0, "work_orders": 0, "stations": 0, "organic_matter": 0, "ph_redox": 0, "validation_issues": 0,
	}
	if diff := cmp.Diff(want, mustCounts(t, repo)); diff != "" {
		t.Errorf("counts after failed save (-want +got):\n%s", diff)
	}
}

func TestFailedUpdateKeepsPreviousVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkOrderRepository(openTestDB(t), compliance.DefaultThresholds(), nil)

	if _, err := repo.Save(ctx, sampleResult("1234"), constants.PolicySkip); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before := mustCounts(t, repo)

	bad := sampleResult("1234")
	bad.Stations = append(bad.Stations, entity.Station{Code: "E1"})
	if _, err := repo.Save(ctx, bad, constants.PolicyUpdate); !errors.Is(err, common.ErrDatabase) {
		t.Fatalf("err = %v, want ErrDatabase", err)
	}
	if diff := cmp.Diff(before, mustCounts(t, repo)); diff != "" {
		t.Errorf("failed UPDATE changed rows (-before +after):\n%s", diff)
	}
	versions, err := repo.Versions(ctx, "1234")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1}, versions); diff != "" {
		t.Errorf("versions (-want +got):\n%s", diff)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"s.db", "s.db?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"},
		{"s.db?_pragma=busy_timeout(100)", "s.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)"},
		{"s.db?_pragma=foreign_keys(1)", "s.db?_pragma=foreign_keys(1)"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUpdateCascadesWithCustomDSN(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "custom.db") + "?_pragma=busy_timeout(1000)"
	repo := NewWorkOrderRepository(openTestDSN(t, dsn), compliance.DefaultThresholds(), nil)

	for _, policy := range []constants.DuplicatePolicy{constants.PolicySkip, constants.PolicyUpdate} {
		if _, err := repo.Save(ctx, sampleResult("55"), policy); err != nil {
			t.Fatalf("Save %s: %v", policy, err)
		}
	}
	want := map[string]int{
		"sites": 1, "work_orders": 1, "stations": 2, "organic_matter": 2, "ph_redox": 2, "validation_issues": 1,
	}
	if diff := cmp.Diff(want, mustCounts(t, repo)); diff != "" {
		t.Errorf("counts after UPDATE (-want +got):\n%s", diff)
	}
}

func TestCensoredSite(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkOrderRepository(openTestDB(t), compliance.DefaultThresholds(), nil)

	res := sampleResult("777")
	res.Metadata.SiteCode = nil
	res.Metadata.SiteName = nil
	if _, err := repo.Save(ctx, res, constants.PolicySkip); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].SiteCode != "CENS_777" || !list[0].NeedsReview || list[0].Diagnosis != constants.ConditionAerobic {
		t.Errorf("list = %+v", list)
	}
}

func TestSiteKey(t *testing.T) {
	code, name, censored := siteKey(entity.Metadata{WorkOrder: "12", SiteName: ptr("Bahía")})
	if code != "CENS_12" || name != "Bahía" || !censored {
		t.Errorf("siteKey = %q %q %v", code, name, censored)
	}
}

func TestIsPostgres(t *testing.T) {
	if !IsPostgres("postgres://u@h/db") || IsPostgres("sediment.db") {
		t.Error("IsPostgres mismatch")
	}
}
