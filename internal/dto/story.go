package dto

import (
	"github.com/aretw0/fable/pkg/domain"
)

// StorySummary is the read-only view of a story shared by the HTTP and MCP
// adapters.
type StorySummary struct {
	File   string         `json:"file"`
	Entry  string         `json:"entry,omitempty"`
	Blocks []BlockSummary `json:"blocks"`
}

// BlockSummary lists where a block can lead. Unresolved holds the
// destinations that match no loaded block.
type BlockSummary struct {
	Name         string   `json:"name"`
	Line         int      `json:"line"`
	Destinations []string `json:"destinations"`
	Unresolved   []string `json:"unresolved,omitempty"`
}

// Summarize builds summaries for stories, checking destinations against the
// same set.
func Summarize(stories []*domain.Story) []StorySummary {
	byFile := make(map[string]*domain.Story, len(stories))
	for _, s := range stories {
		byFile[s.File] = s
	}

	out := make([]StorySummary, 0, len(stories))
	for _, s := range stories {
		out = append(out, summarize(s, byFile))
	}
	return out
}

func summarize(s *domain.Story, byFile map[string]*domain.Story) StorySummary {
	entry, _ := s.Entry()
	sum := StorySummary{
		File:   s.File,
		Entry:  entry,
		Blocks: make([]BlockSummary, 0, len(s.Order)),
	}
	for _, name := range s.Order {
		b := s.Blocks[name]
		bs := BlockSummary{Name: b.Name, Line: b.Line, Destinations: []string{}}
		for _, d := range b.Destinations() {
			bs.Destinations = append(bs.Destinations, d.String())
			if !resolves(byFile, s.File, d) {
				bs.Unresolved = append(bs.Unresolved, d.String())
			}
		}
		sum.Blocks = append(sum.Blocks, bs)
	}
	return sum
}

func resolves(byFile map[string]*domain.Story, current string, d domain.Destination) bool {
	file, block := d.Target(current)
	s, ok := byFile[file]
	if !ok {
		return false
	}
	if block == "" {
		_, ok = s.Entry()
		return ok
	}
	return s.Block(block) != nil
}
