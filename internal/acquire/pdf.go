package acquire

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/sediment-tracker/internal/common"
)

// PDF is the Source for files on disk. pdfcpu validates the file and counts
// pages; ledongthuc/pdf reads the text layer and positioned runs.
type PDF struct {
	conf *model.Configuration
}

func NewPDF() *PDF {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDF{conf: conf}
}

func (p *PDF) Open(_ context.Context, path string) (Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDocumentOpen, err)
	}
	pctx, err := api.ReadValidateAndOptimize(f, p.conf)
	_ = f.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: pdfcpu read: %v", common.ErrDocumentOpen, err)
	}

	lf, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDocumentOpen, err)
	}
	return &pdfDoc{file: lf, reader: r, pages: pctx.PageCount}, nil
}

type pdfDoc struct {
	mu     sync.Mutex // the text reader is not safe for concurrent use
	file   *os.File
	reader *pdf.Reader
	pages  int
}

func (d *pdfDoc) NumPages() int { return d.pages }

func (d *pdfDoc) page(n int) (pdf.Page, bool) {
	if n < 1 || n > d.reader.NumPage() {
		return pdf.Page{}, false
	}
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return pdf.Page{}, false
	}
	return p, true
}

func (d *pdfDoc) NativeText(n int) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: text layer: %v", n, r)
		}
	}()

	p, ok := d.page(n)
	if !ok {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (d *pdfDoc) TableRows(n int) (rows [][]string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("page %d: content stream: %v", n, r)
		}
	}()

	p, ok := d.page(n)
	if !ok {
		return nil, nil
	}
	content := p.Content()
	glyphs := make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return ReconstructRows(glyphs), nil
}

func (d *pdfDoc) Close() error {
	return d.file.Close()
}
