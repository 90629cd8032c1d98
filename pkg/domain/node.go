package domain

// Node is one element of a block body.
// The concrete types are TextRun, Conditional, Directive, Menu and Jump.
type Node interface {
	node()
}

// TextRun is a span of narrative text with an optional color.
// Break marks the last run of a source line.
type TextRun struct {
	Content string   `json:"content"`
	Color   ColorTag `json:"color,omitempty"`
	Break   bool     `json:"break,omitempty"`
}

// Conditional selects one of two node sequences based on the GameState
// at the moment it is reached.
type Conditional struct {
	Predicate Predicate `json:"predicate"`
	Then      []Node    `json:"then"`
	Else      []Node    `json:"else,omitempty"`
}

// DirectiveOp enumerates the GameState mutations a story can perform.
type DirectiveOp string

const (
	OpSetFlag     DirectiveOp = "set_flag"
	OpClearFlag   DirectiveOp = "clear_flag"
	OpIncrCounter DirectiveOp = "incr_counter"
	OpDecrCounter DirectiveOp = "decr_counter"
	OpSetCounter  DirectiveOp = "set_counter"
)

// Directive mutates the GameState.
// Amount is used by the counter operations.
type Directive struct {
	Op     DirectiveOp `json:"op"`
	Target string      `json:"target"`
	Amount int         `json:"amount,omitempty"`
}

// Apply performs the mutation on g.
func (d Directive) Apply(g *GameState) {
	switch d.Op {
	case OpSetFlag:
		g.SetFlag(d.Target, true)
	case OpClearFlag:
		g.SetFlag(d.Target, false)
	case OpIncrCounter:
		g.AdjustCounter(d.Target, d.Amount)
	case OpDecrCounter:
		g.AdjustCounter(d.Target, -d.Amount)
	case OpSetCounter:
		g.SetCounter(d.Target, d.Amount)
	}
}

// Option is a single selectable choice in a Menu.
// A nil Guard means the option is always visible.
//
// Keywords are extra ways to pick the option by typing. A plain entry
// matches input it contains; an entry starting with '@' names a word list
// ("@yes", "@north") and matches any word of it.
type Option struct {
	Label       string      `json:"label"`
	Keywords    []string    `json:"keywords,omitempty"`
	Destination Destination `json:"destination"`
	Guard       Predicate   `json:"guard,omitempty"`
}

// Visible reports whether the option is offered under g.
func (o Option) Visible(g *GameState) bool {
	return o.Guard == nil || o.Guard.Eval(g)
}

// Menu is a run of consecutive options.
type Menu struct {
	Options []Option `json:"options"`
}

// Jump transfers control unconditionally.
type Jump struct {
	Destination Destination `json:"destination"`
}

func (TextRun) node()     {}
func (Conditional) node() {}
func (Directive) node()   {}
func (Menu) node()        {}
func (Jump) node()        {}
