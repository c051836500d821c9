package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/pipeline"
)

const (
	SheetDocuments = "Documents"
	SheetStations  = "Stations"
	SheetReplicas  = "Replicas"
	SheetIssues    = "Issues"
)

var headers = map[string][]string{
	SheetDocuments: {
		"File", "Status", "Report Kind", "Work Order", "Version", "Site Code", "Site Name", "Category",
		"Monitoring Type", "Sampling Date", "Intake Date", "Reported Condition", "Diagnosis",
		"OM Violations", "pH/Eh Violations", "Threshold", "Stations", "Needs Review", "Error", "Duration (ms)",
	},
	SheetStations: {
		"Work Order", "Station", "UTM Easting", "UTM Northing", "Depth (m)",
		"OM Avg (%)", "OM Replicas", "pH Avg", "Eh Avg (mV)", "Redox Avg (mV)", "Temp Avg (°C)", "pH/Redox Replicas",
	},
	SheetReplicas: {
		"Work Order", "Sample", "Measurement", "Weight (g)", "OM (%)", "pH", "Redox (mV)", "Eh (mV)", "Temp (°C)",
	},
	SheetIssues: {"Work Order", "Severity", "Field", "Subject", "Message"},
}

var sheetOrder = []string{SheetDocuments, SheetStations, SheetReplicas, SheetIssues}

// Service produces XLSX workbooks of processed documents.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// OutcomesXLSX returns a workbook (as bytes) with one sheet per record type.
// Documents without a result still get a row in the documents sheet.
func (s *Service) OutcomesXLSX(outcomes []pipeline.Outcome) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, name := range sheetOrder {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		row := make([]any, len(headers[name]))
		for j, h := range headers[name] {
			row[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &row); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	w := &sheetWriter{f: f, next: map[string]int{}}
	for _, o := range outcomes {
		w.document(o)
		if o.Result != nil {
			w.result(*o.Result)
		}
	}
	if w.err != nil {
		return nil, fmt.Errorf("xlsx fill: %w", w.err)
	}

	_ = f.SetColWidth(SheetDocuments, "A", "A", 40)
	_ = f.SetColWidth(SheetDocuments, "S", "S", 60)
	_ = f.SetColWidth(SheetIssues, "E", "E", 70)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export xlsx ok",
		"documents", len(outcomes),
		"stations", w.next[SheetStations],
		"replicas", w.next[SheetReplicas],
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile writes the workbook to path, creating parent directories.
func (s *Service) WriteFile(path string, outcomes []pipeline.Outcome) error {
	data, err := s.OutcomesXLSX(outcomes)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

type sheetWriter struct {
	f    *excelize.File
	next map[string]int // rows written per sheet, header excluded
	err  error
}

func (w *sheetWriter) row(sheet string, values ...any) {
	if w.err != nil {
		return
	}
	w.next[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, w.next[sheet]+1)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) document(o pipeline.Outcome) {
	var errMsg string
	if o.Err != nil {
		errMsg = o.Err.Error()
	}
	if o.Result == nil {
		w.row(SheetDocuments, filepath.Base(o.Path), string(o.Status), string(o.Kind),
			"", "", "", "", "", "", "", "", "", "", "", "", "", "", "", errMsg, o.Duration.Milliseconds())
		return
	}
	md, dg := o.Result.Metadata, o.Result.Diagnosis
	var version any
	if o.Saved != nil {
		version = o.Saved.Version
	}
	w.row(SheetDocuments,
		filepath.Base(o.Path), string(o.Status), string(md.ReportKind), md.WorkOrder, version,
		deref(md.SiteCode), deref(md.SiteName), deref(md.Category), str(md.MonitoringType),
		deref(md.SamplingDate), deref(md.IntakeDate), str(md.SiteCondition), string(dg.Condition()),
		dg.OrganicMatterViolations, dg.PhRedoxViolations, dg.ViolationThreshold, dg.TotalStations,
		o.Result.NeedsReview, errMsg, o.Duration.Milliseconds(),
	)
}

func (w *sheetWriter) result(res entity.Result) {
	wo := res.Metadata.WorkOrder
	for _, st := range res.Stations {
		var omAvg, omN, ph, eh, redox, temp, phN any
		if a, ok := res.OrganicAverageFor(st.Code); ok {
			omAvg, omN = a.Percentage, a.Replicas
		}
		if a, ok := res.PhRedoxAverageFor(st.Code); ok {
			ph, eh, redox, temp, phN = deref(a.PH), deref(a.EhMV), deref(a.RedoxMV), deref(a.TemperatureC), a.Replicas
		}
		w.row(SheetStations, wo, st.Code, deref(st.UTMEasting), deref(st.UTMNorthing), deref(st.DepthM),
			omAvg, omN, ph, eh, redox, temp, phN)
	}
	for _, m := range res.OrganicMatter {
		w.row(SheetReplicas, wo, m.SampleCode(), "organic_matter", m.WeightG, m.Percentage)
	}
	for _, m := range res.PhRedox {
		w.row(SheetReplicas, wo, m.SampleCode(), "ph_redox", nil, nil,
			deref(m.PH), deref(m.RedoxMV), deref(m.EhMV), deref(m.TemperatureC))
	}
	for _, i := range res.Issues {
		w.row(SheetIssues, wo, string(i.Severity), i.Field, i.Subject, i.Message)
	}
}

// deref returns nil for a nil pointer so the cell stays empty.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func str[T ~string](p *T) any {
	if p == nil {
		return nil
	}
	return string(*p)
}
