package measurements

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/internal/patterns"
)

const (
	locationWindow = 50
	tableWindow    = 200
)

var (
	reMOT     = regexp.MustCompile(`\bMOT\b`)
	rePhRedox = regexp.MustCompile(`PH\s*/\s*REDOX`)
)

// lines keeps the original text next to its folded form.
type lines struct {
	raw    []string
	folded []string
}

func splitLines(text string) lines {
	raw := strings.Split(text, "\n")
	folded := make([]string, len(raw))
	for i, l := range raw {
		folded[i] = patterns.Fold(l)
	}
	return lines{raw: raw, folded: folded}
}

func isLocationHeader(f string) bool {
	return strings.Contains(f, "UBICACION") || strings.Contains(f, "IDENTIFICACION")
}

func endsLocation(f string) bool {
	return strings.Contains(f, "MATERIA") || reMOT.MatchString(f) || rePhRedox.MatchString(f)
}

func isOrganicHeader(f string) bool {
	return strings.Contains(f, "MATERIA") && strings.Contains(f, "ORGANICA")
}

func endsOrganic(f string) bool {
	return rePhRedox.MatchString(f) || strings.Contains(f, "POTENCIAL") ||
		strings.Contains(f, "ANEXO") || strings.Contains(f, "LIMITES")
}

func isPhRedoxHeader(f string) bool {
	return rePhRedox.MatchString(f) || strings.Contains(f, "POTENCIAL")
}

func endsPhRedox(f string) bool {
	return strings.Contains(f, "ANEXO") || strings.Contains(f, "LIMITE")
}

func headers(ls lines, match func(string) bool) []int {
	var idx []int
	for i, f := range ls.folded {
		if match(f) {
			idx = append(idx, i)
		}
	}
	return idx
}

// phRedoxHeaders orders pH/redox headers so those after the first organic-matter
// header come first; report introductions often mention "potencial redox".
func phRedoxHeaders(ls lines) []int {
	all := headers(ls, isPhRedoxHeader)
	om := headers(ls, isOrganicHeader)
	if len(om) == 0 {
		return all
	}
	var after, before []int
	for _, i := range all {
		if i > om[0] {
			after = append(after, i)
		} else {
			before = append(before, i)
		}
	}
	return append(after, before...)
}
