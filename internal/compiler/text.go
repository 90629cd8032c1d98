package compiler

import (
	"strings"

	"github.com/aretw0/fable/pkg/domain"
)

// text splits a narrative line into TextRuns at color markers.
// "{name}" opens a span, "{/name}" closes it and "{{" is a literal brace.
// Spans never cross lines.
func (st *parseState) text(num int, line string) error {
	var (
		runs    []domain.TextRun
		buf     strings.Builder
		color   = domain.ColorDefault
		openCol int
	)

	flush := func() {
		if buf.Len() > 0 {
			runs = append(runs, domain.TextRun{Content: buf.String(), Color: color})
			buf.Reset()
		}
	}

	for i := 0; i < len(line); {
		if line[i] != '{' {
			buf.WriteByte(line[i])
			i++
			continue
		}
		if strings.HasPrefix(line[i:], "{{") {
			buf.WriteByte('{')
			i += 2
			continue
		}

		name, closing, width := scanTag(line[i:])
		if width == 0 {
			buf.WriteByte('{')
			i++
			continue
		}

		col := i + 1
		tag := domain.ColorTag(name)
		if !st.parser.palette[tag] {
			return st.fail(num, col, domain.ParseUnknownColor, line, "unknown color %q", name)
		}

		switch {
		case !closing && color != domain.ColorDefault:
			return st.fail(num, col, domain.ParseNestedColor, line, "color %q opened inside %q (opened at column %d)", name, color, openCol)
		case !closing:
			flush()
			color = tag
			openCol = col
		case color == domain.ColorDefault:
			return st.fail(num, col, domain.ParseUnmatchedClose, line, "closing {/%s} without an open span", name)
		case color != tag:
			return st.fail(num, openCol, domain.ParseUnterminated, line, "span %q closed by {/%s}", color, name)
		default:
			flush()
			color = domain.ColorDefault
		}
		i += width
	}

	if color != domain.ColorDefault {
		return st.fail(num, openCol, domain.ParseUnterminated, line, "color span %q is not closed on this line", color)
	}

	flush()
	if len(runs) == 0 {
		runs = append(runs, domain.TextRun{})
	}
	runs[len(runs)-1].Break = true

	for _, r := range runs {
		st.emit(r)
	}
	return nil
}

// scanTag recognises "{name}" or "{/name}" at the start of s.
// width is 0 when s does not start with a tag.
func scanTag(s string) (name string, closing bool, width int) {
	i := 1
	if i < len(s) && s[i] == '/' {
		closing = true
		i++
	}
	start := i
	for i < len(s) && isTagChar(s[i]) {
		i++
	}
	if i == start || i >= len(s) || s[i] != '}' {
		return "", false, 0
	}
	return s[start:i], closing, i + 1
}

func isTagChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}
