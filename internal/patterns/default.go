package patterns

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

// DefaultVersion identifies the built-in table.
const DefaultVersion = "builtin-1"

const datePart = `(\d{2}[/-]\d{2}[/-]\d{4})`

func acceptCategory(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1 && n <= 5
}

// acceptSiteName rejects candidates with no letters (e.g. a bare site code).
func acceptSiteName(v string) bool {
	return strings.IndexFunc(v, unicode.IsLetter) >= 0
}

func acceptMonitoringType(v string) bool {
	_, ok := constants.CanonicalizeMonitoringType(v)
	return ok
}

func defaultRules() map[Field][]Rule {
	return map[Field][]Rule{
		FieldWorkOrder: {
			MustRule("ot", `(?:^|[^A-Z])OT[:\s_-]*(\d{3,5})(?:\D|$)`, nil),
			MustRule("o.t.", `(?:^|[^A-Z])O\.T\.?[:\s_-]*(\d{3,5})(?:\D|$)`, nil),
			MustRule("orden trabajo", `ORDEN[:\s]+(?:DE\s+)?TRABAJO[:\s]*(\d{3,5})(?:\D|$)`, nil),
		},
		FieldSiteCode: {
			MustRule("codigo centro", `C[óo]digo\s+Centro[:\s]*(\d{6})`, nil),
			MustRule("cod. centro", `C[óo]d\.\s*Centro[:\s]*(\d{6})`, nil),
			MustRule("centro", `Centro[:\s]+(\d{6})`, nil),
			MustRule("id", `\bID[:\s]*(\d{6})\b`, nil),
		},
		FieldSiteName: {
			MustRule("id/nombre", `ID/Nombre[:\s]*([^\n]+?)(?:\s+C[óo]digo|\n|$)`, acceptSiteName),
			MustRule("nombre centro", `Nombre\s+Centro[:\s]*([^\n]+)`, acceptSiteName),
			MustRule("centro label", `^[ \t]*Centro[ \t]*:[ \t]*([A-Za-zÀ-ÿ][A-Za-zÀ-ÿ \t]*\d*)`, acceptSiteName),
		},
		FieldCategory: {
			MustRule("categoria", `Categor[íi]a[:\s]+(\d)\b`, acceptCategory),
			MustRule("cat.", `\bCat[:.\s]+(\d)\b`, acceptCategory),
		},
		FieldMonitoringType: {
			MustRule("tipo de monitoreo", `Tipo\s+de\s+Monitoreo[: \t]+([^\n]+)`, acceptMonitoringType),
			MustRule("infa post", `(INFA[- ]?POST[- ]?ANAER[ÓO]BIC[OA])`, nil),
			MustRule("post", `(POST[- ]?ANAER[ÓO]BIC[OA])`, nil),
			MustRule("infa", `\b(INFA)\b`, nil),
			MustRule("cps", `\b(CPS)\b`, nil),
		},
		FieldIntakeDate: {
			MustRule("fecha ingreso laboratorio", `Fecha\s+Ingreso\s+Laboratorio[:\s]*`+datePart, nil),
			MustRule("ingreso laboratorio", `Ingreso\s+Laboratorio[:\s]*`+datePart, nil),
			MustRule("fecha ingreso", `Fecha\s+Ingreso[:\s]*`+datePart, nil),
		},
		FieldSamplingDate: {
			MustRule("fecha inicio/fin", `Fecha\s+Inicio[:/\s]*Fin[:\s]*`+datePart, nil),
			MustRule("fecha muestreo", `Fecha\s+(?:de\s+)?Muestreo[:\s]*`+datePart, nil),
			MustRule("fecha inicio", `Fecha\s+Inicio[:\s]*`+datePart, nil),
		},
		FieldResponsible: {
			MustRule("responsable terreno", `Responsable\s+Terreno[: \t]*([^\n]+)`, acceptSiteName),
			MustRule("responsable", `Responsable[: \t]*([^\n]+)`, acceptSiteName),
		},
		FieldSiteCondition: {
			MustRule("condicion", `Condici[óo]n[:\s]*(anaer[óo]bic[oa]|aer[óo]bic[oa])`, nil),
			MustRule("estado", `Estado[:\s]*(anaer[óo]bic[oa]|aer[óo]bic[oa])`, nil),
			MustRule("resultado", `Resultado[:\s]*(anaer[óo]bic[oa]|aer[óo]bic[oa])`, nil),
			MustRule("presenta estado", `Presenta\s+(?:un\s+)?estado\s+(anaer[óo]bic[oa]|aer[óo]bic[oa])`, nil),
			MustRule("centro condicion", `Centro\s+(anaer[óo]bic[oa]|aer[óo]bic[oa])`, nil),
		},
	}
}

func defaultKeywords() map[constants.ReportKind][]Keyword {
	return map[constants.ReportKind][]Keyword{
		constants.ReportSediment: {
			{Terms: []string{"MATERIA ORGANICA", "MOT"}, Weight: 3},
			{Terms: []string{"PH/REDOX", "POTENCIAL REDOX"}, Weight: 2},
			{Terms: []string{"REPLICA"}, Weight: 1},
		},
		constants.ReportOxygen: {
			{Terms: []string{"OXIGENO DISUELTO"}, Weight: 3},
			{Terms: []string{"PERFIL", "PERFILES", "COLUMNA DE AGUA"}, Weight: 2},
			{Terms: []string{"SATURACION"}, Weight: 1},
		},
		constants.ReportVisual: {
			{Terms: []string{"REGISTRO VISUAL"}, Weight: 3},
			{Terms: []string{"TRANSECTA"}, Weight: 2},
			{Terms: []string{"ABUNDANCIA", "PHYLLUM"}, Weight: 1},
		},
	}
}

// Default returns the built-in library. Each call returns a fresh value.
func Default() *Library {
	return New(DefaultVersion, defaultRules(), defaultKeywords())
}

// DefaultAccept returns the built-in acceptance check of a field, if any.
// Custom rules loaded from a rules file get the same checks.
func DefaultAccept(f Field) func(string) bool {
	switch f {
	case FieldCategory:
		return acceptCategory
	case FieldSiteName, FieldResponsible:
		return acceptSiteName
	case FieldMonitoringType:
		return acceptMonitoringType
	}
	return nil
}
