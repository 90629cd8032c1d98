package domain

// StateDiff holds the flags and counters whose values changed between two
// GameState snapshots. It is designed to be serialized to JSON for partial
// updates on a client.
type StateDiff struct {
	Flags    map[string]bool `json:"flags,omitempty"`
	Counters map[string]int  `json:"counters,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff holding all of newState (initial load).
// Names missing on one side read as false and 0. It returns nil when
// nothing changed.
func Diff(oldState, newState *GameState) *StateDiff {
	if newState == nil {
		return nil
	}
	if oldState == nil {
		oldState = &GameState{}
	}

	diff := &StateDiff{
		Flags:    diffValues(oldState.Flags, newState.Flags),
		Counters: diffValues(oldState.Counters, newState.Counters),
	}
	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffValues[V comparable](old, new map[string]V) map[string]V {
	var zero V
	delta := make(map[string]V)
	for k, v := range new {
		if prev, ok := old[k]; !ok || prev != v {
			delta[k] = v
		}
	}
	for k, prev := range old {
		if _, ok := new[k]; !ok && prev != zero {
			delta[k] = zero
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any changes.
func (d *StateDiff) IsEmpty() bool {
	return d == nil || (len(d.Flags) == 0 && len(d.Counters) == 0)
}
