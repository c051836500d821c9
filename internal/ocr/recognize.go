package ocr

import (
	"context"
	"regexp"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)

// recognize runs tesseract on an image and returns normalized text.
func (e *Engine) recognize(ctx context.Context, imagePath string, psm int) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.cfg.tesseractArgs(imagePath, psm)...)
	if err != nil {
		return "", toolError(ctx, common.ErrOCRRecognize, "tesseract", err, errb)
	}
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return Normalize(txt), nil
}
