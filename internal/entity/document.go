package entity

import (
	"strings"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

// Page is one acquired page of a document. Index is 1-based.
type Page struct {
	Index  int                        `json:"index"`
	Text   string                     `json:"text"`
	Method constants.ExtractionMethod `json:"method"`
	Rows   [][]string                 `json:"rows,omitempty"` // reconstructed table cells, when that strategy ran
}

// Document is the immutable result of text acquisition for one PDF.
type Document struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Pages []Page `json:"pages"`
}

// PageTexts returns the page texts in document order.
func (d Document) PageTexts() []string {
	out := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = p.Text
	}
	return out
}

// FullText joins all page texts with a newline.
func (d Document) FullText() string {
	return strings.Join(d.PageTexts(), "\n")
}

// MethodCounts tallies how many pages each extraction method produced.
func (d Document) MethodCounts() map[constants.ExtractionMethod]int {
	counts := make(map[constants.ExtractionMethod]int)
	for _, p := range d.Pages {
		counts[p.Method]++
	}
	return counts
}
