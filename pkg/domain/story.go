package domain

// Block is a named section of a story file.
type Block struct {
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Nodes []Node `json:"nodes"`
}

// Story is the parsed form of one story file.
// Blocks are indexed by name; Order keeps declaration order.
type Story struct {
	File   string            `json:"file"`
	Blocks map[string]*Block `json:"blocks"`
	Order  []string          `json:"order"`
}

// NewStory creates an empty story for the given file id.
func NewStory(file string) *Story {
	return &Story{
		File:   file,
		Blocks: make(map[string]*Block),
	}
}

// Block returns the named block, or nil.
func (s *Story) Block(name string) *Block {
	return s.Blocks[name]
}

// Entry returns the name of the first declared block.
// The second value is false when the story has no blocks.
func (s *Story) Entry() (string, bool) {
	if len(s.Order) == 0 {
		return "", false
	}
	return s.Order[0], true
}

// Walk visits every node of every block in declaration order,
// descending into both branches of conditionals.
func (s *Story) Walk(fn func(block *Block, n Node)) {
	for _, name := range s.Order {
		b := s.Blocks[name]
		walkNodes(b, b.Nodes, fn)
	}
}

func walkNodes(b *Block, nodes []Node, fn func(*Block, Node)) {
	for _, n := range nodes {
		fn(b, n)
		if c, ok := n.(Conditional); ok {
			walkNodes(b, c.Then, fn)
			walkNodes(b, c.Else, fn)
		}
	}
}

// Destinations lists every destination referenced by a block, in order.
func (b *Block) Destinations() []Destination {
	var out []Destination
	walkNodes(b, b.Nodes, func(_ *Block, n Node) {
		switch v := n.(type) {
		case Menu:
			for _, o := range v.Options {
				out = append(out, o.Destination)
			}
		case Jump:
			out = append(out, v.Destination)
		}
	})
	return out
}
