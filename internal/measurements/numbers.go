package measurements

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reToken = regexp.MustCompile(`-?\d+(?:[.,]\d+)*`)

// token is one numeric literal found on a line.
type token struct {
	raw     string
	decimal bool // exactly one separator, read as a decimal mark
	value   float64
	ok      bool
}

func tokenize(line string) []token {
	raws := reToken.FindAllString(line, -1)
	out := make([]token, 0, len(raws))
	for _, raw := range raws {
		t := token{raw: raw}
		seps := strings.Count(raw, ".") + strings.Count(raw, ",")
		switch seps {
		case 0:
			v, err := strconv.Atoi(raw)
			t.value, t.ok = float64(v), err == nil
		case 1:
			v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
			t.value, t.ok, t.decimal = v, err == nil, true
		}
		out = append(out, t)
	}
	return out
}

// digitsOnly reads a token with separators stripped, e.g. 5.412.345 as 5412345.
func digitsOnly(raw string) (int, bool) {
	clean := strings.NewReplacer(".", "", ",", "").Replace(raw)
	n, err := strconv.Atoi(clean)
	return n, err == nil
}

func isInt(t token) bool { return t.ok && !t.decimal }

func within(v, lo, hi float64) bool { return v >= lo && v <= hi }

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
