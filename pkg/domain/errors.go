package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("parse error")
	// ErrResolution matches every *ResolutionError.
	ErrResolution = errors.New("resolution error")
	// ErrDestination matches every *DestinationError.
	ErrDestination = errors.New("destination error")
	// ErrInput matches every *InputError.
	ErrInput = errors.New("invalid input")
	// ErrNotAwaiting is returned when a choice is submitted to an execution that is not waiting for one.
	ErrNotAwaiting = errors.New("execution is not awaiting a choice")
	// ErrStoryNotFound is returned by loaders when a story id does not exist.
	ErrStoryNotFound = errors.New("story not found")
)

// ParseErrorKind classifies markup failures.
type ParseErrorKind string

const (
	ParseUnterminated         ParseErrorKind = "unterminated"
	ParseUnknownDirective     ParseErrorKind = "unknown_directive"
	ParseMalformedDirective   ParseErrorKind = "malformed_directive"
	ParseUnknownColor         ParseErrorKind = "unknown_color"
	ParseNestedColor          ParseErrorKind = "nested_color"
	ParseMalformedPredicate   ParseErrorKind = "malformed_predicate"
	ParseDuplicateBlock       ParseErrorKind = "duplicate_block"
	ParseMalformedBlock       ParseErrorKind = "malformed_block"
	ParseMalformedDestination ParseErrorKind = "malformed_destination"
	ParseMalformedOption      ParseErrorKind = "malformed_option"
	ParseUnmatchedClose       ParseErrorKind = "unmatched_close"
	ParseOutsideBlock         ParseErrorKind = "outside_block"
)

// ParseError reports malformed markup. Line and Column are 1-based.
type ParseError struct {
	File      string
	Line      int
	Column    int
	Kind      ParseErrorKind
	Construct string
	Msg       string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	if e.Construct != "" {
		return fmt.Sprintf("%s: %s: %s (in %q)", loc, e.Kind, e.Msg, e.Construct)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Kind, e.Msg)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ResolutionError reports a destination that names no loaded file or block.
type ResolutionError struct {
	File   string
	Block  string
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("cannot resolve %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("cannot resolve %s:%s: %s", e.File, e.Block, e.Reason)
}

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// DestinationError is raised when a running execution reaches a destination
// that cannot be resolved. It halts that execution only.
type DestinationError struct {
	From        Position
	Destination Destination
	Err         error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("jump from %s to %s failed: %v", e.From, e.Destination, e.Err)
}

func (e *DestinationError) Unwrap() error { return e.Err }

func (e *DestinationError) Is(target error) bool { return target == ErrDestination }

// InputError reports reader input that cannot be used: a choice index
// outside the offered options, or a line rejected before matching (Reason
// set). The execution is left unchanged, so the reader can try again.
type InputError struct {
	Index  int
	Count  int
	Reason string
}

func (e *InputError) Error() string {
	if e.Reason != "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("choice %d out of range (%d options)", e.Index, e.Count)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }
