package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/constants"
	"github.com/joseph-ayodele/sediment-tracker/internal/patterns"
)

var reDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// NormalizeDate turns DD/MM/YYYY or DD-MM-YYYY into YYYY-MM-DD.
// Out-of-range components yield false, never a malformed string.
func NormalizeDate(s string) (string, bool) {
	m := reDate.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// NormalizeCategory accepts a single digit 1 to 5.
func NormalizeCategory(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

func NormalizeMonitoringType(s string) (constants.MonitoringType, bool) {
	return constants.CanonicalizeMonitoringType(patterns.Fold(s))
}

func NormalizeCondition(s string) (constants.SiteCondition, bool) {
	return constants.CanonicalizeCondition(patterns.Fold(s))
}

// NormalizeText collapses internal whitespace and trims separators.
func NormalizeText(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " :-|")
	return s, s != ""
}
