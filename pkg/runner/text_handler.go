package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/aretw0/fable/pkg/adventure"
	"github.com/aretw0/fable/pkg/domain"
	"github.com/muesli/reflow/wordwrap"
)

// ColorFunc styles text for a color tag. It is only called for spans that
// carry a color.
type ColorFunc func(color domain.ColorTag, text string) string

// TextHandler implements the standard text-based interface.
// Spans are buffered until the end of their source line, then styled,
// wrapped and written.
type TextHandler struct {
	Reader *bufio.Reader
	Writer io.Writer
	Color  ColorFunc
	Width  int

	// CharDelay and LineDelay pace the output like a typewriter. Each
	// character waits a random 0.25 to 1.25 times CharDelay.
	CharDelay time.Duration
	LineDelay time.Duration

	// QuoteColors limits a colored span to its "quoted" parts on lines
	// that contain quotes. The rest of such a span is white.
	QuoteColors bool

	// QuestionColor colors the uncolored text of lines starting with two
	// spaces, and puts a blank line before them. Empty disables it.
	QuestionColor domain.ColorTag

	spans []domain.Span

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithColor styles colored spans.
func WithColor(fn ColorFunc) TextHandlerOption {
	return func(h *TextHandler) {
		h.Color = fn
	}
}

// WithWidth wraps story lines at n columns. Zero disables wrapping.
func WithWidth(n int) TextHandlerOption {
	return func(h *TextHandler) {
		if n >= 0 {
			h.Width = n
		}
	}
}

// WithTypewriter writes story lines one character at a time.
func WithTypewriter(charDelay, lineDelay time.Duration) TextHandlerOption {
	return func(h *TextHandler) {
		h.CharDelay = max(charDelay, 0)
		h.LineDelay = max(lineDelay, 0)
	}
}

// WithQuoteColors colors only the quoted parts of colored lines.
func WithQuoteColors() TextHandlerOption {
	return func(h *TextHandler) {
		h.QuoteColors = true
	}
}

// WithQuestionColor sets the color of two-space indented lines.
func WithQuestionColor(color domain.ColorTag) TextHandlerOption {
	return func(h *TextHandler) {
		h.QuestionColor = color
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can give up on a cancelled
// context while a read is still pending.
func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Render implements ports.Renderer.
func (h *TextHandler) Render(ctx context.Context, span domain.Span) error {
	h.spans = append(h.spans, span)
	if !span.LineEnd {
		return nil
	}
	return h.flush(ctx)
}

func (h *TextHandler) flush(ctx context.Context) error {
	spans := h.spans
	h.spans = h.spans[:0]

	var text strings.Builder
	for _, s := range spans {
		text.WriteString(s.Text)
	}
	question := h.QuestionColor != "" && strings.HasPrefix(text.String(), "  ")
	quotes := h.QuoteColors && strings.Contains(text.String(), `"`)

	var b strings.Builder
	inQuote := false
	for _, s := range spans {
		color := s.Color
		if question && color == domain.ColorDefault {
			color = h.QuestionColor
		}
		if quotes {
			h.paintQuoted(&b, color, s.Text, &inQuote)
			continue
		}
		b.WriteString(h.paint(color, s.Text))
	}

	out := b.String()
	if h.Width > 0 {
		out = wordwrap.String(out, h.Width)
	}
	if question {
		if _, err := fmt.Fprintln(h.Writer); err != nil {
			return err
		}
	}
	return h.typeLine(ctx, out)
}

func (h *TextHandler) paint(color domain.ColorTag, text string) string {
	if h.Color == nil || color == domain.ColorDefault || text == "" {
		return text
	}
	return h.Color(color, text)
}

// paintQuoted writes text with color on its quoted parts, quote marks
// included, and white elsewhere. inQuote carries across the spans of a line.
func (h *TextHandler) paintQuoted(b *strings.Builder, color domain.ColorTag, text string, inQuote *bool) {
	outside := domain.ColorWhite
	if color == domain.ColorDefault {
		outside = domain.ColorDefault
	}
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '"' {
			continue
		}
		if *inQuote {
			b.WriteString(h.paint(color, text[start:i+1]))
			start = i + 1
		} else {
			b.WriteString(h.paint(outside, text[start:i]))
			start = i
		}
		*inQuote = !*inQuote
	}
	if *inQuote {
		b.WriteString(h.paint(color, text[start:]))
	} else {
		b.WriteString(h.paint(outside, text[start:]))
	}
}

// typeLine writes out and a newline, paced by CharDelay and LineDelay.
// Escape sequences are written without pauses.
func (h *TextHandler) typeLine(ctx context.Context, out string) error {
	if h.CharDelay == 0 && h.LineDelay == 0 {
		_, err := fmt.Fprintln(h.Writer, out)
		return err
	}
	escape := false
	for _, r := range out {
		if _, err := io.WriteString(h.Writer, string(r)); err != nil {
			return err
		}
		switch {
		case r == '\x1b':
			escape = true
		case escape:
			escape = !unicode.IsLetter(r)
		default:
			jitter := 0.25 + rand.Float64()
			if err := pause(ctx, time.Duration(float64(h.CharDelay)*jitter)); err != nil {
				return err
			}
		}
	}
	if _, err := io.WriteString(h.Writer, "\n"); err != nil {
		return err
	}
	return pause(ctx, h.LineDelay)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options lists the choices as "1) label", followed by a blank line.
func (h *TextHandler) Options(ctx context.Context, options []domain.Option) error {
	if len(h.spans) > 0 {
		if err := h.flush(ctx); err != nil {
			return err
		}
	}
	for i, opt := range options {
		label := fmt.Sprintf("%d) %s", i+1, opt.Label)
		if h.Color != nil {
			label = h.Color(domain.ColorWhite, label)
		}
		if _, err := fmt.Fprintln(h.Writer, label); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(h.Writer)
	return err
}

// Input prompts with "> " and returns the next sanitized line.
// Input that fails sanitization is reported and read again.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := adventure.Sanitize(res.text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// SystemOutput writes msg on its own line.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(h.Writer, msg)
	return err
}
