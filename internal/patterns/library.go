package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

// Field names a metadata attribute resolved by the cascade.
type Field string

const (
	FieldWorkOrder      Field = "work_order"
	FieldSiteCode       Field = "site_code"
	FieldSiteName       Field = "site_name"
	FieldCategory       Field = "category"
	FieldMonitoringType Field = "monitoring_type"
	FieldSamplingDate   Field = "sampling_date"
	FieldIntakeDate     Field = "intake_date"
	FieldResponsible    Field = "responsible"
	FieldSiteCondition  Field = "site_condition"
)

// Fields lists every field in resolution order.
var Fields = []Field{
	FieldWorkOrder,
	FieldSiteCode,
	FieldSiteName,
	FieldCategory,
	FieldMonitoringType,
	FieldSamplingDate,
	FieldIntakeDate,
	FieldResponsible,
	FieldSiteCondition,
}

// Rule is one candidate pattern. The value is capture group 1 (or the whole
// match when the pattern has no groups), trimmed. Accept may veto a value so
// the next rule gets a chance.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Accept  func(string) bool
}

// NewRule compiles expr case-insensitively in multi-line mode.
func NewRule(name, expr string, accept func(string) bool) (Rule, error) {
	re, err := regexp.Compile("(?im)" + expr)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", name, err)
	}
	return Rule{Name: name, Pattern: re, Accept: accept}, nil
}

// MustRule is NewRule that panics; only for package-level tables.
func MustRule(name, expr string, accept func(string) bool) Rule {
	r, err := NewRule(name, expr, accept)
	if err != nil {
		panic(err)
	}
	return r
}

// Match applies the rule to text.
func (r Rule) Match(text string) (string, bool) {
	if r.Pattern == nil {
		return "", false
	}
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := m[0]
	if len(m) > 1 {
		v = m[1]
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if r.Accept != nil && !r.Accept(v) {
		return "", false
	}
	return v, true
}

// Keyword is a group of equivalent terms that contributes Weight to a report
// kind's score when any of them appears.
type Keyword struct {
	Terms  []string `yaml:"terms" json:"terms"`
	Weight int      `yaml:"weight" json:"weight"`
}

// Library is the immutable pattern table handed to extractors.
type Library struct {
	version  string
	rules    map[Field][]Rule
	keywords map[constants.ReportKind][]Keyword
}

// New builds a library; the maps and slices are copied.
func New(version string, rules map[Field][]Rule, keywords map[constants.ReportKind][]Keyword) *Library {
	l := &Library{
		version:  version,
		rules:    make(map[Field][]Rule, len(rules)),
		keywords: make(map[constants.ReportKind][]Keyword, len(keywords)),
	}
	for f, rs := range rules {
		l.rules[f] = append([]Rule(nil), rs...)
	}
	for k, kws := range keywords {
		cp := make([]Keyword, len(kws))
		for i, kw := range kws {
			cp[i] = Keyword{Terms: append([]string(nil), kw.Terms...), Weight: kw.Weight}
		}
		l.keywords[k] = cp
	}
	return l
}

func (l *Library) Version() string {
	return l.version
}

// Rules returns the ordered rules of a field (a copy).
func (l *Library) Rules(f Field) []Rule {
	return append([]Rule(nil), l.rules[f]...)
}

// Matchers returns the rules of a field as matcher funcs, in priority order.
func (l *Library) Matchers(f Field) []Matcher {
	rs := l.rules[f]
	out := make([]Matcher, len(rs))
	for i, r := range rs {
		out[i] = r.Match
	}
	return out
}

// Keywords returns the keyword groups of a report kind (a copy).
func (l *Library) Keywords(kind constants.ReportKind) []Keyword {
	return append([]Keyword(nil), l.keywords[kind]...)
}

// WithRules returns a copy of l with the rules of the given fields replaced.
func (l *Library) WithRules(version string, rules map[Field][]Rule) *Library {
	merged := make(map[Field][]Rule, len(l.rules))
	for f, rs := range l.rules {
		merged[f] = rs
	}
	for f, rs := range rules {
		merged[f] = rs
	}
	return New(version, merged, l.keywords)
}

// WithKeywords returns a copy of l with the keywords of the given kinds replaced.
func (l *Library) WithKeywords(version string, keywords map[constants.ReportKind][]Keyword) *Library {
	merged := make(map[constants.ReportKind][]Keyword, len(l.keywords))
	for k, kws := range l.keywords {
		merged[k] = kws
	}
	for k, kws := range keywords {
		merged[k] = kws
	}
	return New(version, l.rules, merged)
}
