package sequence

import (
	"fmt"
	"strings"
)

// Summary describes an expanded sequence. It is derived, never stored.
type Summary struct {
	TotalSeconds      int
	TotalDurationText string
	PhaseCount        int
	Description       string
}

// Summarize totals the phases and describes them by label in first-seen
// order, e.g. "4x work, 4x rest, break".
func Summarize(phases []Phase) Summary {
	total := 0
	counts := make(map[string]int)
	var order []string
	for _, p := range phases {
		total += p.Seconds
		if counts[p.Label] == 0 {
			order = append(order, p.Label)
		}
		counts[p.Label]++
	}

	parts := make([]string, 0, len(order))
	for _, label := range order {
		if n := counts[label]; n > 1 {
			parts = append(parts, fmt.Sprintf("%dx %s", n, label))
		} else {
			parts = append(parts, label)
		}
	}

	return Summary{
		TotalSeconds:      total,
		TotalDurationText: FormatDuration(total),
		PhaseCount:        len(phases),
		Description:       strings.Join(parts, ", "),
	}
}

// Plan is a compiled pattern.
type Plan struct {
	Pattern string
	Phases  []Phase
	Summary Summary
}

// Compile tokenizes, parses and expands pattern.
func Compile(pattern string) (*Plan, error) {
	phases, err := expandBounded(Parse(Tokenize(pattern)), MaxPhases)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("compile %q: %w", pattern, ErrEmptySequence)
	}
	return &Plan{
		Pattern: pattern,
		Phases:  phases,
		Summary: Summarize(phases),
	}, nil
}
