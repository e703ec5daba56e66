package validation

import (
	"strings"
	"time"

	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
)

// compareDateTimes orders two FHIR date/dateTime/instant strings. When both
// carry a full timestamp they are compared as instants so that differing
// offsets order correctly. Otherwise they compare lexicographically at the
// coarser precision, so 2024-01-01T10:00:00Z falls within 2024-01-01.
func compareDateTimes(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA == nil && errB == nil {
		return ta.Compare(tb)
	}
	if isPartialDate(a) || isPartialDate(b) {
		n := min(len(a), len(b))
		return strings.Compare(a[:n], b[:n])
	}
	return strings.Compare(a, b)
}

// isPartialDate reports whether s is YYYY, YYYY-MM or YYYY-MM-DD.
func isPartialDate(s string) bool {
	switch len(s) {
	case 4, 7, 10:
		return !strings.ContainsRune(s, 'T')
	}
	return false
}

// comparableUnits reports whether two quantities can be ordered. Coded units
// must agree on system and code; otherwise the unit labels must match.
func comparableUnits(a, b *r4.Quantity) bool {
	if a.Code != "" && b.Code != "" {
		return a.System == b.System && a.Code == b.Code
	}
	return a.Unit == b.Unit
}

func unitLabel(q *r4.Quantity) string {
	switch {
	case q.Code != "":
		return q.Code
	case q.Unit != "":
		return q.Unit
	}
	return "(none)"
}
