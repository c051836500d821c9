package fields

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/common"
	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
	"github.com/joseph-ayodele/sediment-tracker/internal/patterns"
)

// PageOCR re-recognizes a single page with an explicit segmentation mode.
type PageOCR interface {
	Available() bool
	OCRPageWithPSM(ctx context.Context, path string, page, psm int) (string, error)
}

type Config struct {
	MinChars    int // page 1 below this triggers the OCR metadata pass
	MetadataPSM int
	OCRTimeout  time.Duration // bounds the metadata pass; zero means unbounded
}

// Extractor resolves the metadata record of a document.
type Extractor struct {
	lib    *patterns.Library
	ocr    PageOCR
	cfg    Config
	logger *slog.Logger
}

// New builds an Extractor. ocr may be nil.
func New(lib *patterns.Library, ocr PageOCR, cfg Config, logger *slog.Logger) *Extractor {
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = 50
	}
	if cfg.MetadataPSM <= 0 {
		cfg.MetadataPSM = 6
	}
	return &Extractor{lib: lib, ocr: ocr, cfg: cfg, logger: logger}
}

// cascaded are resolved page by page after the work order.
var cascaded = []patterns.Field{
	patterns.FieldSiteCode,
	patterns.FieldSiteName,
	patterns.FieldCategory,
	patterns.FieldMonitoringType,
	patterns.FieldSamplingDate,
	patterns.FieldIntakeDate,
	patterns.FieldResponsible,
	patterns.FieldSiteCondition,
}

// Extract resolves every field it can. A missing work order is the only error.
func (e *Extractor) Extract(ctx context.Context, doc entity.Document) (entity.Metadata, error) {
	logger := e.logger.With("document", doc.Name)
	md := entity.Metadata{SourceFile: doc.Name}
	pages := doc.PageTexts()

	wo, ok := e.WorkOrder(doc.Name, pages)
	if !ok {
		return md, common.NewAppError(common.CodeMissingWorkOrder, doc.Name, common.ErrMissingWorkOrder)
	}
	md.WorkOrder = wo

	if e.needsOCRPass(doc) {
		md.OCRFields = e.ocrPass(ctx, logger, doc, &md)
	}

	for _, f := range cascaded {
		if isSet(&md, f) {
			continue
		}
		hit, ok := patterns.Cascade(pages, e.lib.Matchers(f))
		if !ok {
			continue
		}
		if !apply(&md, f, hit.Value) {
			logger.Debug("matched value failed normalization", "field", f, "value", hit.Value, "page", hit.Page)
			continue
		}
		logger.Debug("field resolved", "field", f, "page", hit.Page, "rule", hit.Rule)
	}

	if md.SiteCondition == nil {
		if c, ok := conditionFromCells(doc); ok {
			md.SiteCondition = &c
		}
	}
	return md, nil
}

// WorkOrder looks in the file name first and falls back to page text.
func (e *Extractor) WorkOrder(fileName string, pages []string) (string, bool) {
	matchers := e.lib.Matchers(patterns.FieldWorkOrder)
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if v, _, ok := patterns.FirstMatch(stem, matchers...); ok {
		return v, true
	}
	hit, ok := patterns.Cascade(pages, matchers)
	if !ok {
		return "", false
	}
	return hit.Value, true
}

func (e *Extractor) needsOCRPass(doc entity.Document) bool {
	if len(doc.Pages) == 0 {
		return false
	}
	p := doc.Pages[0]
	return p.Method == constants.MethodOCR || p.Method == constants.MethodNone
}

// ocrPass re-reads page 1 with the metadata segmentation mode and fills what it
// can. It returns the fields it set.
func (e *Extractor) ocrPass(ctx context.Context, logger *slog.Logger, doc entity.Document, md *entity.Metadata) []string {
	text := ""
	switch {
	case e.ocr == nil || !e.ocr.Available():
		logger.Warn("page 1 text insufficient and ocr not available, metadata pass skipped")
	default:
		ocrCtx, cancel := common.WithTimeout(ctx, e.cfg.OCRTimeout)
		t, err := e.ocr.OCRPageWithPSM(ocrCtx, doc.Path, 1, e.cfg.MetadataPSM)
		cancel()
		if err != nil {
			switch {
			case errors.Is(err, common.ErrOCRUnavailable):
				logger.Warn("ocr not available for metadata pass")
			case errors.Is(err, common.ErrOCRTimeout):
				logger.Warn("ocr metadata pass timed out", "timeout", e.cfg.OCRTimeout)
			default:
				logger.Warn("ocr metadata pass failed", "error", err)
			}
		}
		text = t
	}
	if strings.TrimSpace(text) == "" && doc.Pages[0].Method == constants.MethodOCR {
		text = doc.Pages[0].Text
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var filled []string
	for _, f := range cascaded {
		v, _, ok := patterns.FirstMatch(text, e.lib.Matchers(f)...)
		if ok && apply(md, f, v) {
			filled = append(filled, string(f))
		}
	}
	if md.MonitoringType == nil {
		if mt, ok := monitoringFromKeywords(text); ok {
			md.MonitoringType = &mt
			filled = append(filled, string(patterns.FieldMonitoringType))
		}
	}
	logger.Info("ocr metadata pass", "fields", filled)
	return filled
}

// monitoringFromKeywords scans loose OCR text where labels are often garbled.
func monitoringFromKeywords(text string) (constants.MonitoringType, bool) {
	folded := patterns.Fold(text)
	switch {
	case strings.Contains(folded, "POSTANAEROB") || strings.Contains(folded, "POST ANAEROB") || strings.Contains(folded, "POST-ANAEROB"):
		return constants.MonitoringINFAPostAnaerobic, true
	case patterns.ContainsWord(folded, "INFA"):
		return constants.MonitoringINFA, true
	case patterns.ContainsWord(folded, "CPS"):
		return constants.MonitoringCPS, true
	}
	return "", false
}

// conditionFromCells scans reconstructed table cells for an oxygen condition.
func conditionFromCells(doc entity.Document) (constants.SiteCondition, bool) {
	for _, p := range doc.Pages {
		for _, row := range p.Rows {
			for _, cell := range row {
				folded := patterns.Fold(cell)
				if strings.Contains(folded, "ANAEROB") {
					return constants.ConditionAnaerobic, true
				}
				if strings.Contains(folded, "AEROB") {
					return constants.ConditionAerobic, true
				}
			}
		}
	}
	return "", false
}

func isSet(md *entity.Metadata, f patterns.Field) bool {
	switch f {
	case patterns.FieldSiteCode:
		return md.SiteCode != nil
	case patterns.FieldSiteName:
		return md.SiteName != nil
	case patterns.FieldCategory:
		return md.Category != nil
	case patterns.FieldMonitoringType:
		return md.MonitoringType != nil
	case patterns.FieldSamplingDate:
		return md.SamplingDate != nil
	case patterns.FieldIntakeDate:
		return md.IntakeDate != nil
	case patterns.FieldResponsible:
		return md.Responsible != nil
	case patterns.FieldSiteCondition:
		return md.SiteCondition != nil
	}
	return false
}

// apply normalizes raw into the field. It returns false and leaves md untouched
// when normalization fails.
func apply(md *entity.Metadata, f patterns.Field, raw string) bool {
	switch f {
	case patterns.FieldSiteCode:
		return setText(&md.SiteCode, raw)
	case patterns.FieldSiteName:
		return setText(&md.SiteName, raw)
	case patterns.FieldResponsible:
		return setText(&md.Responsible, raw)
	case patterns.FieldCategory:
		n, ok := NormalizeCategory(raw)
		if ok {
			md.Category = &n
		}
		return ok
	case patterns.FieldMonitoringType:
		mt, ok := NormalizeMonitoringType(raw)
		if ok {
			md.MonitoringType = &mt
		}
		return ok
	case patterns.FieldSamplingDate:
		return setDate(&md.SamplingDate, raw)
	case patterns.FieldIntakeDate:
		return setDate(&md.IntakeDate, raw)
	case patterns.FieldSiteCondition:
		c, ok := NormalizeCondition(raw)
		if ok {
			md.SiteCondition = &c
		}
		return ok
	}
	return false
}

func setText(dst **string, raw string) bool {
	v, ok := NormalizeText(raw)
	if ok {
		*dst = &v
	}
	return ok
}

func setDate(dst **string, raw string) bool {
	v, ok := NormalizeDate(raw)
	if ok {
		*dst = &v
	}
	return ok
}
