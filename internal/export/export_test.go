package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
	"github.com/joseph-ayodele/sediment-tracker/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func sampleOutcomes() []pipeline.Outcome {
	mt := constants.MonitoringINFA
	res := entity.Result{
		Metadata: entity.Metadata{WorkOrder: "1234", SiteCode: ptr("110234"), MonitoringType: &mt, ReportKind: constants.ReportSediment},
		Stations: []entity.Station{{Code: "E1", DepthM: ptr(12.5)}, {Code: "E2"}},
		OrganicMatter: []entity.OrganicMatter{
			{Station: "E1", Replica: 1, WeightG: 0.5, Percentage: 4.2},
		},
		PhRedox: []entity.PhRedox{
			{Station: "E1", Replica: 1, PH: ptr(7.4), EhMV: ptr(120)},
		},
		OrganicAverages: []entity.OrganicAverage{{Station: "E1", Percentage: 4.2, Replicas: 1}},
		Issues:          []entity.Issue{{Severity: entity.SeverityWarning, Field: "intake_date", Message: "is required"}},
		NeedsReview:     true,
	}
	return []pipeline.Outcome{
		{Path: "in/OT-1234.pdf", Status: constants.StatusPartial, Kind: constants.ReportSediment, Result: &res, Saved: &repository.SaveResult{Version: 2}},
		{Path: "in/bad.pdf", Status: constants.StatusFailed, Err: &pipeline.StageError{Stage: pipeline.StageAcquire, Err: errors.New("cannot open")}},
	}
}

func TestOutcomesXLSX(t *testing.T) {
	data, err := NewService(nil).OutcomesXLSX(sampleOutcomes())
	if err != nil {
		t.Fatalf("OutcomesXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff(sheetOrder, f.GetSheetList()); diff != "" {
		t.Errorf("sheets (-want +got):\n%s", diff)
	}

	docs, err := f.GetRows(SheetDocuments)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("documents rows = %d, want 3", len(docs))
	}
	if docs[1][0] != "OT-1234.pdf" || docs[1][1] != "PARTIAL" || docs[1][3] != "1234" || docs[1][4] != "2" || docs[1][8] != "INFA" {
		t.Errorf("document row = %v", docs[1])
	}
	if docs[2][1] != "FAILED" || docs[2][18] != "acquire: cannot open" {
		t.Errorf("failed row = %v", docs[2])
	}

	stations, _ := f.GetRows(SheetStations)
	if len(stations) != 3 || stations[1][1] != "E1" || stations[1][4] != "12.5" || stations[1][5] != "4.2" {
		t.Errorf("stations = %v", stations)
	}
	replicas, _ := f.GetRows(SheetReplicas)
	if len(replicas) != 3 || replicas[1][1] != "E1-R1" || replicas[2][2] != "ph_redox" {
		t.Errorf("replicas = %v", replicas)
	}
	issues, _ := f.GetRows(SheetIssues)
	if len(issues) != 2 || issues[1][2] != "intake_date" {
		t.Errorf("issues = %v", issues)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	if err := NewService(nil).WriteFile(path, sampleOutcomes()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	_ = f.Close()
}
