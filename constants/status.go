package constants

import "strings"

// DocumentStatus is the terminal state of one processed PDF.
type DocumentStatus string

// Stable values (stored in batch summaries and exports).
const (
	StatusOK          DocumentStatus = "OK"          // extracted and stored (or dry run) without issues
	StatusPartial     DocumentStatus = "PARTIAL"     // stored but flagged for review
	StatusFailed      DocumentStatus = "FAILED"      // fatal error for this document
	StatusSkipped     DocumentStatus = "SKIPPED"     // duplicate rejected by policy
	StatusUnsupported DocumentStatus = "UNSUPPORTED" // report kind without extractor
)

// DuplicatePolicy decides what happens when a work-order code is already stored.
type DuplicatePolicy string

const (
	PolicySkip    DuplicatePolicy = "SKIP"
	PolicyUpdate  DuplicatePolicy = "UPDATE"
	PolicyVersion DuplicatePolicy = "VERSION"
)

// ParseDuplicatePolicy is case-insensitive; empty input yields SKIP.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	switch DuplicatePolicy(strings.ToUpper(strings.TrimSpace(s))) {
	case "", PolicySkip:
		return PolicySkip, true
	case PolicyUpdate:
		return PolicyUpdate, true
	case PolicyVersion:
		return PolicyVersion, true
	}
	return "", false
}
