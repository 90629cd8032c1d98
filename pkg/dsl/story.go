package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/fable/internal/compiler"
	"github.com/aretw0/fable/pkg/domain"
)

// StoryBuilder accumulates the markup of one story file.
type StoryBuilder struct {
	file  string
	lines []string
}

// File returns the story id.
func (s *StoryBuilder) File() string { return s.file }

// Block opens a new block. Blocks are written in call order, so the first
// one is the entry block.
func (s *StoryBuilder) Block(name string) *BlockBuilder {
	s.lines = append(s.lines, compiler.TokenBlock+" "+name)
	return &BlockBuilder{story: s}
}

// String renders the story as markup.
func (s *StoryBuilder) String() string {
	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}

// BlockBuilder provides a fluent API for filling a block.
type BlockBuilder struct {
	story *StoryBuilder
	depth int
}

func (b *BlockBuilder) add(line string) *BlockBuilder {
	b.story.lines = append(b.story.lines, line)
	return b
}

// construct writes a construct line indented by the conditional depth.
func (b *BlockBuilder) construct(token, rest string) *BlockBuilder {
	line := strings.Repeat("  ", max(b.depth, 0)) + token
	if rest != "" {
		line += " " + rest
	}
	return b.add(line)
}

// Text adds a line of plain text. Braces are escaped so they print as
// written.
func (b *BlockBuilder) Text(line string) *BlockBuilder {
	return b.add(strings.ReplaceAll(line, "{", "{{"))
}

// Raw adds a line of text markup as is, color spans included.
func (b *BlockBuilder) Raw(line string) *BlockBuilder {
	return b.add(line)
}

// Colored adds a line made of a single color span.
func (b *BlockBuilder) Colored(color domain.ColorTag, text string) *BlockBuilder {
	return b.add(fmt.Sprintf("{%s}%s{/%s}", color, strings.ReplaceAll(text, "{", "{{"), color))
}

// Blank adds an empty line, which renders as a line break.
func (b *BlockBuilder) Blank() *BlockBuilder {
	return b.add("")
}

// Comment adds a comment line.
func (b *BlockBuilder) Comment(text string) *BlockBuilder {
	return b.construct(compiler.TokenComment, text)
}

// Set raises a flag.
func (b *BlockBuilder) Set(flag string) *BlockBuilder {
	return b.construct(compiler.TokenDirective, "set flag:"+flag)
}

// Clear lowers a flag.
func (b *BlockBuilder) Clear(flag string) *BlockBuilder {
	return b.construct(compiler.TokenDirective, "clear flag:"+flag)
}

// Incr adds amount to a counter.
func (b *BlockBuilder) Incr(counter string, amount int) *BlockBuilder {
	return b.construct(compiler.TokenDirective, fmt.Sprintf("incr counter:%s %d", counter, amount))
}

// Decr subtracts amount from a counter.
func (b *BlockBuilder) Decr(counter string, amount int) *BlockBuilder {
	return b.construct(compiler.TokenDirective, fmt.Sprintf("decr counter:%s %d", counter, amount))
}

// SetCounter overwrites a counter.
func (b *BlockBuilder) SetCounter(counter string, value int) *BlockBuilder {
	return b.construct(compiler.TokenDirective, fmt.Sprintf("set counter:%s %d", counter, value))
}

// Option adds a menu option. Consecutive options form one menu.
func (b *BlockBuilder) Option(label, dest string) *BlockBuilder {
	return b.construct(compiler.TokenOption, label+" "+compiler.TokenJump+" "+dest)
}

// OptionWhen adds a menu option shown only while pred holds.
func (b *BlockBuilder) OptionWhen(label, dest, pred string) *BlockBuilder {
	return b.construct(compiler.TokenOption, label+" "+compiler.TokenJump+" "+dest+" when "+pred)
}

// OptionWith adds a menu option that can also be picked by keyword.
// A keyword starting with '@' names a word list, such as "@yes".
func (b *BlockBuilder) OptionWith(label, dest string, keywords ...string) *BlockBuilder {
	if len(keywords) > 0 {
		label += " [" + strings.Join(keywords, ", ") + "]"
	}
	return b.Option(label, dest)
}

// Go adds an unconditional jump.
func (b *BlockBuilder) Go(dest string) *BlockBuilder {
	return b.construct(compiler.TokenJump, dest)
}

// If opens a conditional. Close it with End.
func (b *BlockBuilder) If(pred string) *BlockBuilder {
	b.construct(compiler.TokenConditional, pred)
	b.depth++
	return b
}

// Elif adds a branch to the open conditional.
func (b *BlockBuilder) Elif(pred string) *BlockBuilder {
	b.depth--
	b.construct(compiler.TokenConditional, "elif "+pred)
	b.depth++
	return b
}

// Else adds the fallback branch to the open conditional.
func (b *BlockBuilder) Else() *BlockBuilder {
	b.depth--
	b.construct(compiler.TokenConditional, "else")
	b.depth++
	return b
}

// End closes the open conditional.
func (b *BlockBuilder) End() *BlockBuilder {
	if b.depth > 0 {
		b.depth--
	}
	return b.construct(compiler.TokenConditional, "end")
}

// Block opens the next block of the same story.
func (b *BlockBuilder) Block(name string) *BlockBuilder {
	return b.story.Block(name)
}
