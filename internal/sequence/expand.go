package sequence

import (
	"errors"
	"strconv"
)

// MaxPhases bounds the size of an expanded plan.
const MaxPhases = 10000

var (
	// ErrEmptySequence is returned when a pattern expands to no phases.
	ErrEmptySequence = errors.New("sequence has no phases")
	// ErrTooManyPhases is returned when a pattern expands beyond MaxPhases.
	ErrTooManyPhases = errors.New("sequence expands to too many phases")
)

// Phase is one segment of an expanded sequence. LoopID is the dotted path of
// the enclosing groups ("1", "2.1", ...) and is empty for ungrouped phases.
type Phase struct {
	Seconds              int    `json:"seconds"`
	Label                string `json:"label"`
	OriginalDurationText string `json:"originalDurationText"`
	LoopID               string `json:"loopId"`
	LoopIteration        int    `json:"loopIteration"`
	LoopTotal            int    `json:"loopTotal"`
}

// Expand flattens a node tree into phases in execution order.
func Expand(nodes []Node) []Phase {
	e := &expander{limit: -1}
	e.walk(nodes, "", 1, 1)
	return e.phases
}

type expander struct {
	phases   []Phase
	limit    int // -1 for unbounded
	overflow bool
}

func (e *expander) walk(nodes []Node, parentID string, iteration, total int) {
	ordinal := 0
	for _, n := range nodes {
		if e.overflow {
			return
		}
		switch n := n.(type) {
		case *PhaseNode:
			if e.limit >= 0 && len(e.phases) >= e.limit {
				e.overflow = true
				return
			}
			e.phases = append(e.phases, Phase{
				Seconds:              n.Seconds,
				Label:                n.Label,
				OriginalDurationText: n.DurationText,
				LoopID:               parentID,
				LoopIteration:        iteration,
				LoopTotal:            total,
			})

		case *GroupNode:
			ordinal++
			if !hasPhase(n.Items) {
				continue
			}
			id := strconv.Itoa(ordinal)
			if parentID != "" {
				id = parentID + "." + id
			}
			for i := 1; i <= n.Multiply && !e.overflow; i++ {
				e.walk(n.Items, id, i, n.Multiply)
			}
		}
	}
}

func hasPhase(nodes []Node) bool {
	for _, n := range nodes {
		switch n := n.(type) {
		case *PhaseNode:
			return true
		case *GroupNode:
			if hasPhase(n.Items) {
				return true
			}
		}
	}
	return false
}

// expandBounded is Expand with a phase limit.
func expandBounded(nodes []Node, limit int) ([]Phase, error) {
	e := &expander{limit: limit}
	e.walk(nodes, "", 1, 1)
	if e.overflow {
		return nil, ErrTooManyPhases
	}
	return e.phases, nil
}
