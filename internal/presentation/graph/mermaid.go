package graph

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/fable/pkg/domain"
)

// GraphOverlay contains execution data to visualize on the graph.
// Blocks are named "file:block", as in Execution.History.
type GraphOverlay struct {
	VisitedBlocks []string
	CurrentBlock  string
}

// GenerateMermaid produces a Mermaid flowchart of the stories: one subgraph
// per file, one node per block, and an edge per option and jump.
//
// Shapes:
//   - Entry block of a file: ((Circle))
//   - Block with a menu: [/Parallelogram/]
//   - Block with no way out: ([Stadium])
//   - Default: [Rectangle]
//
// Destinations that do not resolve are drawn as {{Hexagon}} nodes with the
// "missing" class. Edges that leave the file are dotted.
func GenerateMermaid(stories []*domain.Story, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	byFile := make(map[string]*domain.Story, len(stories))
	for _, s := range stories {
		byFile[s.File] = s
	}

	var edges []string
	missing := make(map[string]string)

	for _, story := range stories {
		entry, _ := story.Entry()
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", mermaidID("file", story.File), escape(story.File))

		for _, name := range story.Order {
			block := story.Blocks[name]
			out := collectEdges(block.Nodes, "")

			opener, closer := "[", "]"
			switch {
			case name == entry:
				opener, closer = "((", "))"
			case hasMenu(block.Nodes):
				opener, closer = "[/", "/]"
			case len(out) == 0:
				opener, closer = "([", "])"
			}
			from := blockID(story.File, name)
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", from, opener, escape(name), closer)

			for _, e := range out {
				toFile, toBlock := e.dest.Target(story.File)
				to, ok := resolve(byFile, toFile, toBlock)
				if !ok {
					to = mermaidID("missing", e.dest.String())
					missing[to] = e.dest.String()
				}
				edges = append(edges, fmt.Sprintf("    %s %s %s", from, arrow(e.label, toFile != story.File), to))
			}
		}
		sb.WriteString("    end\n")
	}

	missingIDs := slices.Sorted(maps.Keys(missing))
	for _, id := range missingIDs {
		fmt.Fprintf(&sb, "    %s{{\"%s ?\"}}\n", id, escape(missing[id]))
	}
	for _, e := range edges {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}

	if len(missing) > 0 {
		sb.WriteString("    classDef missing fill:#fee2e2,stroke:#b91c1c,color:#000;\n")
		for _, id := range missingIDs {
			fmt.Fprintf(&sb, "    class %s missing;\n", id)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on either theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, ref := range overlay.VisitedBlocks {
			id := refID(ref)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if id := refID(overlay.CurrentBlock); id != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}

	return sb.String()
}

type edge struct {
	label string
	dest  domain.Destination
}

// collectEdges lists the transfers in nodes. cond is the condition under
// which nodes run, used to label jumps inside conditionals.
func collectEdges(nodes []domain.Node, cond string) []edge {
	var out []edge
	for _, n := range nodes {
		switch n := n.(type) {
		case domain.Jump:
			out = append(out, edge{label: cond, dest: n.Destination})
		case domain.Menu:
			for _, opt := range n.Options {
				label := opt.Label
				if opt.Guard != nil {
					label += " when " + opt.Guard.String()
				}
				out = append(out, edge{label: label, dest: opt.Destination})
			}
		case domain.Conditional:
			out = append(out, collectEdges(n.Then, join(cond, n.Predicate.String()))...)
			out = append(out, collectEdges(n.Else, join(cond, "not "+n.Predicate.String()))...)
		}
	}
	return out
}

func join(outer, inner string) string {
	if outer == "" {
		return inner
	}
	return outer + " and " + inner
}

func hasMenu(nodes []domain.Node) bool {
	for _, n := range nodes {
		switch n := n.(type) {
		case domain.Menu:
			return true
		case domain.Conditional:
			if hasMenu(n.Then) || hasMenu(n.Else) {
				return true
			}
		}
	}
	return false
}

func resolve(byFile map[string]*domain.Story, file, block string) (string, bool) {
	story, ok := byFile[file]
	if !ok {
		return "", false
	}
	if block == "" {
		entry, ok := story.Entry()
		if !ok {
			return "", false
		}
		block = entry
	}
	if story.Block(block) == nil {
		return "", false
	}
	return blockID(file, block), true
}

func arrow(label string, crossFile bool) string {
	switch {
	case label == "" && crossFile:
		return "-.->"
	case label == "":
		return "-->"
	case crossFile:
		return fmt.Sprintf("-. \"%s\" .->", escape(label))
	default:
		return fmt.Sprintf("-- \"%s\" -->", escape(label))
	}
}

// refID maps "file:block" to a node id.
func refID(ref string) string {
	file, block, ok := strings.Cut(ref, ":")
	if !ok || file == "" || block == "" {
		return ""
	}
	return blockID(file, block)
}

func blockID(file, block string) string {
	return mermaidID("b", file+"__"+block)
}

func mermaidID(prefix, s string) string {
	return prefix + "_" + sanitizeMermaidID(s)
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_")
	return r.Replace(id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
