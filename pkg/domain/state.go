package domain

// ExecutionStatus defines the current mode of an execution.
type ExecutionStatus string

const (
	StatusRunning        ExecutionStatus = "running"         // Walking nodes
	StatusAwaitingChoice ExecutionStatus = "awaiting_choice" // Blocked on a menu selection
	StatusHalted         ExecutionStatus = "halted"          // Sink state reached
)

// Halt reasons reported by the engine.
const (
	HaltBlockExhausted = "block exhausted"
	HaltUnresolved     = "unresolved destination"
	HaltStepLimit      = "step limit exceeded"
	HaltOutputFailed   = "output failed"
	HaltCancelled      = "cancelled"
)

// Halt describes why an execution stopped.
// Err is set when the halt was caused by a failure.
type Halt struct {
	Reason string
	Err    error
}

// Position identifies where an execution is.
// Index is the top-level node index inside the block.
type Position struct {
	File  string `json:"file"`
	Block string `json:"block"`
	Index int    `json:"index"`
}

// String renders the position as file:block.
func (p Position) String() string {
	return p.File + ":" + p.Block
}
