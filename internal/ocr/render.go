package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

// renderPage rasterizes a single page of pdfPath to PNG.
// Returns the image path and a cleanup func removing the temp directory.
func (e *Engine) renderPage(ctx context.Context, pdfPath string, page int) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "sed-pp-*")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.cfg.pdftoppmArgs(pdfPath, page, prefix)...)
	if err != nil {
		cleanup()
		return "", func() {}, toolError(ctx, common.ErrOCRRender, fmt.Sprintf("pdftoppm page %d", page), err, errb)
	}

	out := prefix + ".png"
	if _, statErr := os.Stat(out); statErr != nil {
		// older poppler builds ignore -singlefile and suffix the page number
		matches, _ := filepath.Glob(prefix + "*.png")
		sort.Strings(matches)
		if len(matches) == 0 {
			cleanup()
			return "", func() {}, fmt.Errorf("%w: pdftoppm produced no image for page %d", common.ErrOCRRender, page)
		}
		out = matches[0]
	}
	return out, cleanup, nil
}
