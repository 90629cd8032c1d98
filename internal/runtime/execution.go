package runtime

import (
	"slices"

	"github.com/aretw0/fable/pkg/domain"
)

// frame is a node sequence being walked. The bottom frame is the block
// body; frames above it are inlined conditional branches.
type frame struct {
	nodes []domain.Node
	idx   int
}

// Execution is one play-through. It exclusively owns its GameState and is
// advanced only through Engine.Start and Engine.Choose.
type Execution struct {
	game    *domain.GameState
	status  domain.ExecutionStatus
	file    string
	block   string
	frames  []frame
	options []domain.Option
	halt    *domain.Halt
	history []string
}

// Status reports the current state of the machine.
func (x *Execution) Status() domain.ExecutionStatus { return x.status }

// Game returns the GameState the execution mutates.
func (x *Execution) Game() *domain.GameState { return x.game }

// Position reports the current file, block and the index of the next
// top-level node of the block.
func (x *Execution) Position() domain.Position {
	p := domain.Position{File: x.file, Block: x.block}
	if len(x.frames) > 0 {
		p.Index = x.frames[0].idx
	}
	return p
}

// Options returns a copy of the visible options while awaiting a choice.
func (x *Execution) Options() []domain.Option {
	return slices.Clone(x.options)
}

// Halt reports why the execution stopped, or nil while it is still live.
func (x *Execution) Halt() *domain.Halt { return x.halt }

// History lists the visited blocks as file:block, oldest first.
func (x *Execution) History() []string {
	return slices.Clone(x.history)
}
