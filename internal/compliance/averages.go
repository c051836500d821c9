package compliance

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/joseph-ayodele/sediment-tracker/internal/entity"
)

var reStationNumber = regexp.MustCompile(`^E?0*(\d+)$`)

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func stationLess(a, b string) bool {
	na, nb := stationNumber(a), stationNumber(b)
	if na != nb {
		return na < nb
	}
	return a < b
}

func stationNumber(code string) int {
	m := reStationNumber.FindStringSubmatch(code)
	if m == nil {
		return math.MaxInt
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// OrganicAverages computes the mean percentage per station, rounded to 2 places.
func OrganicAverages(records []entity.OrganicMatter) []entity.OrganicAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.Station] += r.Percentage
		counts[r.Station]++
	}
	out := make([]entity.OrganicAverage, 0, len(sums))
	for st, sum := range sums {
		out = append(out, entity.OrganicAverage{
			Station:    st,
			Percentage: round(sum/float64(counts[st]), 2),
			Replicas:   counts[st],
		})
	}
	sort.Slice(out, func(i, j int) bool { return stationLess(out[i].Station, out[j].Station) })
	return out
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value(places int) *float64 {
	if m.n == 0 {
		return nil
	}
	v := round(m.sum/float64(m.n), places)
	return &v
}

// PhRedoxAverages computes per-station means of each value over the replicates
// that carry it: pH to 2 places, Eh and redox to whole millivolts.
func PhRedoxAverages(records []entity.PhRedox) []entity.PhRedoxAverage {
	type acc struct {
		ph, eh, redox, temp mean
		replicas            int
	}
	by := make(map[string]*acc)
	for _, r := range records {
		a := by[r.Station]
		if a == nil {
			a = &acc{}
			by[r.Station] = a
		}
		a.replicas++
		if r.PH != nil {
			a.ph.add(*r.PH)
		}
		if r.EhMV != nil {
			a.eh.add(float64(*r.EhMV))
		}
		if r.RedoxMV != nil {
			a.redox.add(float64(*r.RedoxMV))
		}
		if r.TemperatureC != nil {
			a.temp.add(*r.TemperatureC)
		}
	}
	out := make([]entity.PhRedoxAverage, 0, len(by))
	for st, a := range by {
		out = append(out, entity.PhRedoxAverage{
			Station:      st,
			PH:           a.ph.value(2),
			EhMV:         a.eh.value(0),
			RedoxMV:      a.redox.value(0),
			TemperatureC: a.temp.value(2),
			Replicas:     a.replicas,
		})
	}
	sort.Slice(out, func(i, j int) bool { return stationLess(out[i].Station, out[j].Station) })
	return out
}
