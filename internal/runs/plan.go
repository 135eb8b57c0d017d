package runs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadPosition is returned when an insertion target is neither an integer
// nor the literal "end".
var ErrBadPosition = errors.New(`position must be an integer or "end"`)

// Relation says where the payload goes relative to the anchor.
type Relation int

const (
	// Append places the payload after the last element (no anchor needed).
	Append Relation = iota
	// Before places the payload immediately before the anchor element.
	Before
	// After places the payload immediately after the anchor element.
	After
)

// String returns the relation name for logs and JSON results.
func (r Relation) String() string {
	switch r {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return "append"
	}
}

// Target is an insertion request position: a 0-based index, or the end of the
// sequence.
type Target struct {
	Index int
	End   bool
}

// ParseTarget parses a CLI position argument: a decimal integer or "end".
// The empty string means end.
func ParseTarget(s string) (Target, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "end") {
		return Target{End: true}, nil
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return Target{}, fmt.Errorf("%w: got %q", ErrBadPosition, s)
	}

	return Target{Index: n}, nil
}

// Plan is the computed splice location: the anchor's index in the current
// sequence and the payload's position relative to it. Anchor is meaningless
// when Relation is Append.
type Plan struct {
	Anchor   int
	Relation Relation
}

// PlanInsert computes where to splice a new element into a sequence of seqLen
// blocks so that the element ends up at the requested position.
//
// Targets are clamped into [0, seqLen]: out-of-range insertion positions
// append rather than fail. This is deliberate and differs from the strict
// OutOfRange policy used for element lookups.
//
// For an empty sequence the plan is Append with no anchor: the payload is
// spliced directly and becomes the sole element, with no sentinel left
// behind in the document.
func PlanInsert(seqLen int, target Target) Plan {
	if target.End {
		return Plan{Relation: Append}
	}

	i := target.Index
	if i < 0 {
		i = 0
	}

	if i >= seqLen {
		return Plan{Relation: Append}
	}

	if i == 0 {
		return Plan{Anchor: 0, Relation: Before}
	}

	return Plan{Anchor: i - 1, Relation: After}
}
