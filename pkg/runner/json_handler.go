package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/fable/pkg/adventure"
	"github.com/aretw0/fable/pkg/domain"
)

// Event types written by JSONHandler, one JSON object per line.
const (
	EventText    = "text"
	EventOptions = "options"
	EventSystem  = "system"
	EventState   = "state"
)

// Event is one line of JSONHandler output.
type Event struct {
	Type    string            `json:"type"`
	Text    string            `json:"text,omitempty"`
	Color   domain.ColorTag   `json:"color,omitempty"`
	LineEnd bool              `json:"line_end,omitempty"`
	Options []OptionView      `json:"options,omitempty"`
	Message string            `json:"message,omitempty"`
	State   *domain.StateDiff `json:"state,omitempty"`
}

// OptionView is an option as presented to a structured client.
type OptionView struct {
	Number      int    `json:"number"`
	Label       string `json:"label"`
	Destination string `json:"destination"`
}

// reply is the object form of a JSONHandler input line.
type reply struct {
	Choice *int    `json:"choice"`
	Input  *string `json:"input"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Input lines may be a JSON object {"choice": n} (1-based) or
// {"input": "text"}, a JSON string, or plain text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) emit(evt Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(evt)
}

// Render implements ports.Renderer.
func (h *JSONHandler) Render(ctx context.Context, span domain.Span) error {
	return h.emit(Event{Type: EventText, Text: span.Text, Color: span.Color, LineEnd: span.LineEnd})
}

// Options emits a single options event.
func (h *JSONHandler) Options(ctx context.Context, options []domain.Option) error {
	views := make([]OptionView, len(options))
	for i, opt := range options {
		views[i] = OptionView{Number: i + 1, Label: opt.Label, Destination: opt.Destination.String()}
	}
	return h.emit(Event{Type: EventOptions, Options: views})
}

// SystemOutput emits a system event.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(Event{Type: EventSystem, Message: msg})
}

// State emits a state event carrying the changed flags and counters.
func (h *JSONHandler) State(ctx context.Context, diff *domain.StateDiff) error {
	if diff.IsEmpty() {
		return nil
	}
	return h.emit(Event{Type: EventState, State: diff})
}

// Input reads one line. Blank lines are skipped. A line that fails
// sanitization is reported as a system event and the next line is read.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return "", err
			}
			continue
		}
		clean, serr := adventure.Sanitize(decodeReply(text))
		if serr == nil {
			return clean, nil
		}
		if eerr := h.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", serr)); eerr != nil {
			return "", eerr
		}
		if err != nil {
			return "", err
		}
	}
}

func decodeReply(text string) string {
	var r reply
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &r) == nil {
		switch {
		case r.Choice != nil:
			return strconv.Itoa(*r.Choice)
		case r.Input != nil:
			return *r.Input
		}
	}
	var s string
	if json.Unmarshal([]byte(text), &s) == nil {
		return s
	}
	return text
}
