package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      *GameState
		new      *GameState
		wantDiff *StateDiff // nil means no change
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &GameState{
				Flags:    map[string]bool{"lamp": true},
				Counters: map[string]int{"score": 0},
			},
			wantDiff: &StateDiff{
				Flags:    map[string]bool{"lamp": true},
				Counters: map[string]int{"score": 0},
			},
		},
		{
			name:     "No Change",
			old:      &GameState{Flags: map[string]bool{"lamp": true}, Counters: map[string]int{"score": 2}},
			new:      &GameState{Flags: map[string]bool{"lamp": true}, Counters: map[string]int{"score": 2}},
			wantDiff: nil,
		},
		{
			name: "Counter Change",
			old:  &GameState{Counters: map[string]int{"score": 2, "gold": 5}},
			new:  &GameState{Counters: map[string]int{"score": 3, "gold": 5}},
			wantDiff: &StateDiff{
				Counters: map[string]int{"score": 3},
			},
		},
		{
			name: "Flag Cleared And Added",
			old:  &GameState{Flags: map[string]bool{"lamp": true}},
			new:  &GameState{Flags: map[string]bool{"lamp": false, "key": true}},
			wantDiff: &StateDiff{
				Flags: map[string]bool{"lamp": false, "key": true},
			},
		},
		{
			name: "Missing Names Read As Zero",
			old: &GameState{
				Flags:    map[string]bool{"lamp": true, "door": false},
				Counters: map[string]int{"gold": 4, "keys": 0},
			},
			new: &GameState{},
			wantDiff: &StateDiff{
				Flags:    map[string]bool{"lamp": false},
				Counters: map[string]int{"gold": 0},
			},
		},
		{
			name:     "Nil New",
			old:      NewGameState(),
			new:      nil,
			wantDiff: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestDiff_SnapshotIsolation(t *testing.T) {
	g := NewGameState()
	before := g.Snapshot()
	g.SetFlag("lamp", true)
	g.AdjustCounter("score", 5)

	got := Diff(before, g)
	want := &StateDiff{
		Flags:    map[string]bool{"lamp": true},
		Counters: map[string]int{"score": 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %+v, want %+v", got, want)
	}
}

func TestStateDiff_JSON(t *testing.T) {
	data, err := json.Marshal(&StateDiff{Counters: map[string]int{"score": 1}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"counters":{"score":1}}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var empty *StateDiff
	if !empty.IsEmpty() {
		t.Error("nil diff should be empty")
	}
}
