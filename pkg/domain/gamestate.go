package domain

import "maps"

// DefaultCounter is the counter every new GameState starts with.
const DefaultCounter = "score"

// GameState holds the flags and counters of a single play-through.
// Unset names read as false and 0. Flag and counter names live in
// separate namespaces, so "gold" can be both a flag and a counter.
//
// A GameState is owned by exactly one execution and is not safe for
// concurrent use.
type GameState struct {
	Flags    map[string]bool `json:"flags"`
	Counters map[string]int  `json:"counters"`
}

// NewGameState returns an empty GameState with the default counter present.
func NewGameState() *GameState {
	return &GameState{
		Flags:    make(map[string]bool),
		Counters: map[string]int{DefaultCounter: 0},
	}
}

// Flag reports the value of a flag. Unknown flags are false.
func (g *GameState) Flag(name string) bool {
	return g.Flags[name]
}

// SetFlag stores a flag value.
func (g *GameState) SetFlag(name string, value bool) {
	if g.Flags == nil {
		g.Flags = make(map[string]bool)
	}
	g.Flags[name] = value
}

// Counter reports the value of a counter. Unknown counters are 0.
func (g *GameState) Counter(name string) int {
	return g.Counters[name]
}

// AdjustCounter adds delta (which may be negative) to a counter.
func (g *GameState) AdjustCounter(name string, delta int) {
	if g.Counters == nil {
		g.Counters = make(map[string]int)
	}
	g.Counters[name] += delta
}

// SetCounter overwrites a counter.
func (g *GameState) SetCounter(name string, value int) {
	if g.Counters == nil {
		g.Counters = make(map[string]int)
	}
	g.Counters[name] = value
}

// Snapshot creates a deep copy of the state.
func (g *GameState) Snapshot() *GameState {
	if g == nil {
		return nil
	}
	return &GameState{
		Flags:    maps.Clone(g.Flags),
		Counters: maps.Clone(g.Counters),
	}
}
