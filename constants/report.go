package constants

// ReportKind identifies the family of laboratory report a PDF belongs to.
type ReportKind string

const (
	ReportSediment ReportKind = "SEDIMENTO"
	ReportOxygen   ReportKind = "OXIGENO"
	ReportVisual   ReportKind = "VISUAL"
)

// ReportKinds in tie-break order for detection.
var ReportKinds = []ReportKind{ReportSediment, ReportOxygen, ReportVisual}

// ExtractionMethod records which strategy produced a page's text.
type ExtractionMethod string

const (
	MethodNative ExtractionMethod = "native"
	MethodTable  ExtractionMethod = "reconstructed-table"
	MethodOCR    ExtractionMethod = "ocr"
	MethodNone   ExtractionMethod = "none"
)
