package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

// Runner executes pdftoppm or tesseract. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	r.logger.Debug("ocr tool finished",
		"tool", filepath.Base(name),
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", out.Len(),
		"error", err,
	)
	return out.Bytes(), errb.Bytes(), err
}

// pdftoppmArgs renders exactly one page to <prefix>.png.
func (c Config) pdftoppmArgs(pdfPath string, page int, prefix string) []string {
	p := strconv.Itoa(page)
	return []string{"-f", p, "-l", p, "-r", strconv.Itoa(c.DPI), "-png", "-singlefile", pdfPath, prefix}
}

// tesseractArgs prints the recognized text of image on stdout.
func (c Config) tesseractArgs(image string, psm int) []string {
	args := []string{image, "stdout", "-l", c.Lang}
	if psm > 0 {
		args = append(args, "--psm", strconv.Itoa(psm))
	}
	if c.TessdataDir != "" {
		args = append(args, "--tessdata-dir", c.TessdataDir)
	}
	return args
}

// toolError classifies a failed run into one of the OCR sentinels. kind is
// ErrOCRRender or ErrOCRRecognize.
func toolError(ctx context.Context, kind error, tool string, err error, stderr []byte) error {
	msg := strings.TrimSpace(truncate(string(stderr), 512))
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", common.ErrOCRTimeout, tool)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %s: %w", kind, tool, ctx.Err())
	case kind == common.ErrOCRRecognize && missingLanguage(msg):
		return fmt.Errorf("%w: %s", common.ErrOCRLanguage, msg)
	}
	return fmt.Errorf("%w: %s: %w (%s)", kind, tool, err, msg)
}

// missingLanguage recognizes tesseract's complaint about absent traineddata.
func missingLanguage(stderr string) bool {
	return strings.Contains(stderr, "Failed loading language") || strings.Contains(stderr, ".traineddata")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
