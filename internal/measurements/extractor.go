package measurements

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

var (
	reSample        = regexp.MustCompile(`\b(E\d+)\s*[-_]?\s*R(\d+)\b`)
	reStationLabel  = regexp.MustCompile(`ESTACION\s+(\d+)`)
	reStationCode   = regexp.MustCompile(`\bE(\d{1,3})\b`)
	reStationNumber = regexp.MustCompile(`^E?0*(\d+)$`)
)

// Plausibility bounds used for range-based slot assignment.
const (
	WeightMin, WeightMax   = 0.01, 15.0
	PercentMin, PercentMax = 0.5, 100.0
	PHMin, PHMax           = 6.0, 8.5
	TempMin, TempMax       = 5.0, 20.0
	RedoxMin, RedoxMax     = -500.0, -50.0
	EhMin, EhMax           = -400.0, 400.0
	UTMMin, UTMMax         = 100000, 9999999
	DepthMin, DepthMax     = 1.0, 300.0
)

// Extractor parses the measurement tables of a sediment report.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract finds the location, organic-matter and pH/redox tables in fullText.
func (e *Extractor) Extract(fullText string) entity.Measurements {
	ls := splitLines(fullText)
	m := entity.Measurements{
		Locations:     parseLocations(ls),
		OrganicMatter: parseOrganicMatter(ls),
		PhRedox:       parsePhRedox(ls),
	}
	if len(m.OrganicMatter) == 0 {
		e.logger.Warn("organic matter table not found or empty")
	}
	if len(m.PhRedox) == 0 {
		e.logger.Warn("ph/redox table not found or empty")
	}
	e.logger.Debug("measurements parsed",
		"locations", len(m.Locations),
		"organic_matter", len(m.OrganicMatter),
		"ph_redox", len(m.PhRedox),
	)
	return m
}

// NormalizeStation renders a station code as E<n>, dropping leading zeros.
func NormalizeStation(code string) string {
	m := reStationNumber.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	n, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("E%d", n)
}

func stationNumber(code string) int {
	m := reStationNumber.FindStringSubmatch(code)
	if m == nil {
		return -1
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func parseLocations(ls lines) []entity.Station {
	var out []entity.Station
	seen := make(map[string]bool)
	for _, h := range headers(ls, isLocationHeader) {
		for i := h + 1; i < len(ls.folded) && i <= h+locationWindow; i++ {
			f := ls.folded[i]
			if endsLocation(f) {
				break
			}
			st, ok := parseLocationLine(f)
			if !ok || seen[st.Code] {
				continue
			}
			seen[st.Code] = true
			out = append(out, st)
		}
	}
	return out
}

// parseLocationLine reads one row of the location table. The line should be folded.
func parseLocationLine(f string) (entity.Station, bool) {
	loc := reStationLabel.FindStringSubmatchIndex(f)
	if loc == nil {
		loc = reStationCode.FindStringSubmatchIndex(f)
	}
	if loc == nil {
		return entity.Station{}, false
	}
	st := entity.Station{Code: NormalizeStation("E" + f[loc[2]:loc[3]])}
	rest := f[:loc[0]] + " " + f[loc[1]:]

	toks := tokenize(rest)
	used := make([]bool, len(toks))
	for i, t := range toks {
		if st.UTMNorthing != nil {
			break
		}
		n, ok := digitsOnly(t.raw)
		if !ok || n < UTMMin || n > UTMMax {
			continue
		}
		v := n
		used[i] = true
		if st.UTMEasting == nil {
			st.UTMEasting = &v
		} else {
			st.UTMNorthing = &v
		}
	}
	for i := len(toks) - 1; i >= 0; i-- {
		if used[i] || !toks[i].ok {
			continue
		}
		if within(toks[i].value, DepthMin, DepthMax) {
			d := toks[i].value
			st.DepthM = &d
			break
		}
	}
	if st.UTMEasting == nil && st.DepthM == nil {
		return entity.Station{}, false
	}
	return st, true
}

func parseOrganicMatter(ls lines) []entity.OrganicMatter {
	var out []entity.OrganicMatter
	seen := make(map[string]bool)
	for _, h := range headers(ls, isOrganicHeader) {
		found := 0
		for i := h + 1; i < len(ls.folded) && i <= h+tableWindow; i++ {
			f := ls.folded[i]
			if found > 0 && endsOrganic(f) {
				break
			}
			if strings.Contains(f, "CONTINUACION") {
				continue
			}
			rec, ok := ParseOrganicMatterLine(f)
			if !ok {
				continue
			}
			found++
			key := rec.SampleCode()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, rec)
		}
	}
	return out
}

// ParseOrganicMatterLine reads "E3-R2 0,512 11,34" style rows. Both weight and
// percentage must resolve, otherwise the row is dropped.
func ParseOrganicMatterLine(line string) (entity.OrganicMatter, bool) {
	f := strings.ToUpper(line)
	loc := reSample.FindStringSubmatchIndex(f)
	if loc == nil {
		return entity.OrganicMatter{}, false
	}
	replica, _ := strconv.Atoi(f[loc[4]:loc[5]])
	rec := entity.OrganicMatter{Station: NormalizeStation(f[loc[2]:loc[3]]), Replica: replica}

	var haveWeight, havePct bool
	for _, t := range tokenize(f[:loc[0]] + " " + f[loc[1]:]) {
		if !t.ok || !t.decimal {
			continue
		}
		switch {
		case !haveWeight && within(t.value, WeightMin, WeightMax):
			rec.WeightG, haveWeight = round(t.value, 3), true
		case !havePct && within(t.value, PercentMin, PercentMax):
			rec.Percentage, havePct = round(t.value, 2), true
		}
	}
	if !haveWeight || !havePct {
		return entity.OrganicMatter{}, false
	}
	return rec, true
}

func parsePhRedox(ls lines) []entity.PhRedox {
	var out []entity.PhRedox
	seen := make(map[string]bool)
	for _, h := range phRedoxHeaders(ls) {
		found := 0
		for i := h + 1; i < len(ls.folded) && i <= h+tableWindow; i++ {
			f := ls.folded[i]
			if found > 0 && endsPhRedox(f) {
				break
			}
			rec, ok := ParsePhRedoxLine(f)
			if !ok {
				continue
			}
			found++
			key := rec.SampleCode()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, rec)
		}
		if len(out) > 0 {
			break
		}
	}
	return out
}

// ParsePhRedoxLine reads a pH/redox row. The record is kept when pH or Eh resolves.
// Redox is the first integer in its range; Eh is the last other integer in its range.
func ParsePhRedoxLine(line string) (entity.PhRedox, bool) {
	f := strings.ToUpper(line)
	loc := reSample.FindStringSubmatchIndex(f)
	if loc == nil {
		return entity.PhRedox{}, false
	}
	replica, _ := strconv.Atoi(f[loc[4]:loc[5]])
	rec := entity.PhRedox{Station: NormalizeStation(f[loc[2]:loc[3]]), Replica: replica}

	toks := tokenize(f[:loc[0]] + " " + f[loc[1]:])
	phIdx, redoxIdx := -1, -1
	for i, t := range toks {
		if t.ok && t.decimal && within(t.value, PHMin, PHMax) {
			v := t.value
			rec.PH, phIdx = &v, i
			break
		}
	}
	for i, t := range toks {
		if i != phIdx && t.ok && t.decimal && within(t.value, TempMin, TempMax) {
			v := t.value
			rec.TemperatureC = &v
			break
		}
	}
	for i, t := range toks {
		if isInt(t) && within(t.value, RedoxMin, RedoxMax) {
			v := int(t.value)
			rec.RedoxMV, redoxIdx = &v, i
			break
		}
	}
	for i := len(toks) - 1; i >= 0; i-- {
		t := toks[i]
		if i != redoxIdx && isInt(t) && within(t.value, EhMin, EhMax) {
			v := int(t.value)
			rec.EhMV = &v
			break
		}
	}
	if rec.PH == nil && rec.EhMV == nil {
		return entity.PhRedox{}, false
	}
	return rec, true
}

// ConsolidateStations unions location stations with every station referenced
// by a replicate, sorted by station number. Location attributes are kept.
func ConsolidateStations(m entity.Measurements) []entity.Station {
	byCode := make(map[string]entity.Station)
	for _, s := range m.Locations {
		if _, ok := byCode[s.Code]; !ok {
			byCode[s.Code] = s
		}
	}
	add := func(code string) {
		if _, ok := byCode[code]; !ok {
			byCode[code] = entity.Station{Code: code}
		}
	}
	for _, r := range m.OrganicMatter {
		add(r.Station)
	}
	for _, r := range m.PhRedox {
		add(r.Station)
	}

	out := make([]entity.Station, 0, len(byCode))
	for _, s := range byCode {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ni, nj := stationNumber(out[i].Code), stationNumber(out[j].Code)
		if ni != nj {
			return ni < nj
		}
		return out[i].Code < out[j].Code
	})
	return out
}
