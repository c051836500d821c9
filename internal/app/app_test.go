package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

func testConfig(t *testing.T) common.Config {
	t.Setenv("DB_URL", filepath.Join(t.TempDir(), "app.db"))
	t.Setenv("PDFTOPPM_BIN", "definitely-not-installed-pdftoppm")
	t.Setenv("TESSERACT_BIN", "definitely-not-installed-tesseract")
	return common.LoadConfig()
}

func TestNewDryRunHasNoStore(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), Options{DryRun: true}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if a.DB != nil || a.Store != nil || !a.Processor.DryRun() {
		t.Errorf("dry run app opened a store")
	}
	if a.OCR.Available() {
		t.Error("fake OCR binaries reported available")
	}
}

func TestNewOpensStore(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), Options{Policy: constants.PolicyVersion}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	counts, err := a.Store.Counts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if counts["work_orders"] != 0 {
		t.Errorf("fresh store has %d work orders", counts["work_orders"])
	}
}

func TestNewRejectsBadPolicy(t *testing.T) {
	_, err := New(context.Background(), testConfig(t), Options{Policy: "MERGE", DryRun: true}, nil)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestProcessMissingFileFails(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), Options{DryRun: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := a.Processor.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if out.Status != constants.StatusFailed || !errors.Is(out.Err, common.ErrDocumentOpen) {
		t.Errorf("outcome = %s %v", out.Status, out.Err)
	}
}
