package vault

import (
	"fmt"
	"strings"
)

// Lane is a narrative-mode partition key used to scope exemplar storage and
// retrieval. The set is closed: unknown names are rejected at parse time.
type Lane string

const (
	LaneDialogue    Lane = "Dialogue"
	LaneNarration   Lane = "Narration"
	LaneInteriority Lane = "Interiority"
	LaneAction      Lane = "Action"
)

// Lanes returns all lanes in canonical order.
func Lanes() []Lane {
	return []Lane{LaneDialogue, LaneNarration, LaneInteriority, LaneAction}
}

// ParseLane converts a lane name into a Lane. Matching is case-insensitive.
func ParseLane(s string) (Lane, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dialogue":
		return LaneDialogue, nil
	case "narration":
		return LaneNarration, nil
	case "interiority":
		return LaneInteriority, nil
	case "action":
		return LaneAction, nil
	}
	return "", fmt.Errorf("unknown lane %q (expected Dialogue, Narration, Interiority, or Action)", s)
}

// Valid reports whether the lane is one of the four known lanes.
func (l Lane) Valid() bool {
	switch l {
	case LaneDialogue, LaneNarration, LaneInteriority, LaneAction:
		return true
	}
	return false
}

func (l Lane) String() string { return string(l) }
