package patterns

// Matcher recognizes a value in text. No match is ("", false), never an error.
type Matcher func(text string) (string, bool)

// FirstMatch tries matchers in order and returns the first success and its index.
func FirstMatch(text string, matchers ...Matcher) (string, int, bool) {
	for i, m := range matchers {
		if v, ok := m(text); ok {
			return v, i, true
		}
	}
	return "", -1, false
}

// Hit is the winning match of a cascade.
type Hit struct {
	Value string
	Page  int // 1-based
	Rule  int // index in priority order
}

// Cascade walks pages in order and, per page, matchers in priority order.
// The first page producing any match wins; within it, the highest-priority matcher wins.
func Cascade(pages []string, matchers []Matcher) (Hit, bool) {
	for i, text := range pages {
		if text == "" {
			continue
		}
		if v, idx, ok := FirstMatch(text, matchers...); ok {
			return Hit{Value: v, Page: i + 1, Rule: idx}, true
		}
	}
	return Hit{}, false
}
