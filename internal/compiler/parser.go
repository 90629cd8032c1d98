package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/fable/pkg/adventure"
	"github.com/aretw0/fable/pkg/domain"
)

// Construct tokens. A line is a construct when, after leading blanks,
// it starts with one of these followed by a blank or the end of the line.
const (
	TokenComment     = "//"
	TokenBlock       = ":-"
	TokenConditional = "?-"
	TokenDirective   = "=-"
	TokenOption      = "*-"
	TokenJump        = "->"
)

// Parser is responsible for converting raw story text into a domain.Story.
// It is stateless between calls and safe for concurrent use.
type Parser struct {
	palette map[domain.ColorTag]bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithPalette replaces the set of color names accepted in text spans.
func WithPalette(colors ...domain.ColorTag) Option {
	return func(p *Parser) {
		p.palette = make(map[domain.ColorTag]bool, len(colors))
		for _, c := range colors {
			p.palette[c] = true
		}
	}
}

// NewParser creates a new parser instance using the default palette.
func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	WithPalette(domain.DefaultPalette...)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Palette returns the accepted color names.
func (p *Parser) Palette() []domain.ColorTag {
	out := make([]domain.ColorTag, 0, len(p.palette))
	for c := range p.palette {
		out = append(out, c)
	}
	return out
}

// Parse converts the content of one story file.
// file is only used to label the Story and its errors.
func (p *Parser) Parse(file string, data []byte) (*domain.Story, error) {
	st := &parseState{
		parser: p,
		file:   file,
		story:  domain.NewStory(file),
	}

	lines := strings.Split(string(bytes.TrimPrefix(data, []byte("\ufeff"))), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for i, raw := range lines {
		if err := st.line(i+1, strings.TrimSuffix(raw, "\r")); err != nil {
			return nil, err
		}
	}
	if err := st.closeBlock(); err != nil {
		return nil, err
	}
	return st.story, nil
}

// condFrame collects an open conditional until its end marker.
type condFrame struct {
	line      int
	column    int
	source    string
	preds     []domain.Predicate
	branches  [][]domain.Node
	elseNodes []domain.Node
	inElse    bool
}

func (c *condFrame) target() *[]domain.Node {
	if c.inElse {
		return &c.elseNodes
	}
	return &c.branches[len(c.branches)-1]
}

// build folds elif branches into nested conditionals.
func (c *condFrame) build() domain.Conditional {
	rest := c.elseNodes
	var out domain.Conditional
	for i := len(c.preds) - 1; i >= 0; i-- {
		out = domain.Conditional{Predicate: c.preds[i], Then: c.branches[i], Else: rest}
		rest = []domain.Node{out}
	}
	return out
}

type parseState struct {
	parser *Parser
	file   string
	story  *domain.Story

	block    *domain.Block
	conds    []*condFrame
	inOption bool
}

func (st *parseState) target() *[]domain.Node {
	if n := len(st.conds); n > 0 {
		return st.conds[n-1].target()
	}
	return &st.block.Nodes
}

func (st *parseState) emit(n domain.Node) {
	t := st.target()
	*t = append(*t, n)
}

func (st *parseState) fail(line, col int, kind domain.ParseErrorKind, construct, format string, args ...any) error {
	return &domain.ParseError{
		File:      st.file,
		Line:      line,
		Column:    col,
		Kind:      kind,
		Construct: construct,
		Msg:       fmt.Sprintf(format, args...),
	}
}

func (st *parseState) line(num int, raw string) error {
	trimmed := strings.TrimLeft(raw, " \t")
	col := len(raw) - len(trimmed) + 1
	token, rest, isConstruct := splitToken(trimmed)

	if isConstruct && token == TokenComment {
		return nil
	}

	if st.block == nil {
		switch {
		case isConstruct && token == TokenBlock:
		case trimmed == "":
			return nil
		default:
			return st.fail(num, col, domain.ParseOutsideBlock, trimmed, "content before the first block title")
		}
	}

	wasOption := st.inOption
	st.inOption = false

	if !isConstruct {
		return st.text(num, raw)
	}

	switch token {
	case TokenBlock:
		return st.openBlock(num, col, trimmed, rest)
	case TokenConditional:
		return st.conditional(num, col, trimmed, rest)
	case TokenDirective:
		d, err := st.directive(num, col, trimmed, rest)
		if err != nil {
			return err
		}
		st.emit(d)
	case TokenOption:
		opt, err := st.option(num, col, trimmed, rest)
		if err != nil {
			return err
		}
		st.inOption = true
		t := st.target()
		if n := len(*t); wasOption && n > 0 {
			if m, ok := (*t)[n-1].(domain.Menu); ok {
				m.Options = append(m.Options, opt)
				(*t)[n-1] = m
				return nil
			}
		}
		st.emit(domain.Menu{Options: []domain.Option{opt}})
	case TokenJump:
		fields := strings.Fields(rest)
		if len(fields) != 1 {
			return st.fail(num, col, domain.ParseMalformedDestination, trimmed, "a jump takes exactly one destination")
		}
		dest, err := ParseDestination(fields[0])
		if err != nil {
			return st.fail(num, col+len(TokenJump)+1, domain.ParseMalformedDestination, trimmed, "%v", err)
		}
		st.emit(domain.Jump{Destination: dest})
	}
	return nil
}

// splitToken detects a construct token at the start of a trimmed line.
func splitToken(trimmed string) (token, rest string, ok bool) {
	for _, tok := range []string{TokenComment, TokenBlock, TokenConditional, TokenDirective, TokenOption, TokenJump} {
		if !strings.HasPrefix(trimmed, tok) {
			continue
		}
		after := trimmed[len(tok):]
		if tok == TokenComment || after == "" || after[0] == ' ' || after[0] == '\t' {
			return tok, strings.TrimSpace(after), true
		}
	}
	return "", "", false
}

func (st *parseState) openBlock(num, col int, construct, name string) error {
	if err := st.closeBlock(); err != nil {
		return err
	}
	if !validName(name) {
		return st.fail(num, col, domain.ParseMalformedBlock, construct, "invalid block name %q", name)
	}
	if _, exists := st.story.Blocks[name]; exists {
		return st.fail(num, col, domain.ParseDuplicateBlock, construct, "block %q already declared at line %d", name, st.story.Blocks[name].Line)
	}
	st.block = &domain.Block{Name: name, Line: num}
	st.story.Blocks[name] = st.block
	st.story.Order = append(st.story.Order, name)
	return nil
}

func (st *parseState) closeBlock() error {
	if n := len(st.conds); n > 0 {
		open := st.conds[n-1]
		return st.fail(open.line, open.column, domain.ParseUnterminated, open.source, "conditional is never closed with %q", TokenConditional+" end")
	}
	st.block = nil
	st.inOption = false
	return nil
}

func (st *parseState) conditional(num, col int, construct, rest string) error {
	top := func() *condFrame {
		if n := len(st.conds); n > 0 {
			return st.conds[n-1]
		}
		return nil
	}()
	predCol := col + len(TokenConditional) + 1

	switch {
	case rest == "end":
		if top == nil {
			return st.fail(num, col, domain.ParseUnmatchedClose, construct, "no open conditional to close")
		}
		st.conds = st.conds[:len(st.conds)-1]
		st.emit(top.build())
		return nil

	case rest == "else":
		if top == nil || top.inElse {
			return st.fail(num, col, domain.ParseUnmatchedClose, construct, "else without an open conditional")
		}
		top.inElse = true
		return nil

	case rest == "elif" || strings.HasPrefix(rest, "elif "):
		if top == nil || top.inElse {
			return st.fail(num, col, domain.ParseUnmatchedClose, construct, "elif without an open conditional")
		}
		src := strings.TrimPrefix(rest, "elif")
		pred, err := st.predicate(num, predCol+len("elif"), construct, src)
		if err != nil {
			return err
		}
		top.preds = append(top.preds, pred)
		top.branches = append(top.branches, nil)
		return nil
	}

	pred, err := st.predicate(num, predCol, construct, rest)
	if err != nil {
		return err
	}
	st.conds = append(st.conds, &condFrame{
		line:     num,
		column:   col,
		source:   construct,
		preds:    []domain.Predicate{pred},
		branches: [][]domain.Node{nil},
	})
	return nil
}

func (st *parseState) predicate(num, col int, construct, src string) (domain.Predicate, error) {
	pred, err := ParsePredicate(src)
	if err != nil {
		offset := 0
		var pe *predicateError
		if errors.As(err, &pe) {
			offset = pe.offset
		}
		return nil, st.fail(num, col+offset, domain.ParseMalformedPredicate, construct, "%v", err)
	}
	return pred, nil
}

func (st *parseState) directive(num, col int, construct, rest string) (domain.Directive, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return domain.Directive{}, st.fail(num, col, domain.ParseMalformedDirective, construct, "missing directive keyword")
	}
	keyword := fields[0]
	args := fields[1:]
	bad := func(format string, a ...any) (domain.Directive, error) {
		return domain.Directive{}, st.fail(num, col, domain.ParseMalformedDirective, construct, format, a...)
	}

	switch keyword {
	case "set":
		if len(args) == 1 {
			name, ok := operand(args[0], "flag:")
			if !ok {
				return bad("expected flag:NAME, or counter:NAME followed by a value")
			}
			return domain.Directive{Op: domain.OpSetFlag, Target: name}, nil
		}
		if len(args) == 2 {
			name, ok := operand(args[0], "counter:")
			if !ok {
				return bad("expected counter:NAME before the value")
			}
			v, err := strconv.Atoi(args[1])
			if err != nil {
				return bad("invalid counter value %q", args[1])
			}
			return domain.Directive{Op: domain.OpSetCounter, Target: name, Amount: v}, nil
		}
		return bad("set takes flag:NAME or counter:NAME VALUE")

	case "clear":
		if len(args) != 1 {
			return bad("clear takes flag:NAME")
		}
		name, ok := operand(args[0], "flag:")
		if !ok {
			return bad("expected flag:NAME")
		}
		return domain.Directive{Op: domain.OpClearFlag, Target: name}, nil

	case "incr", "decr":
		if len(args) < 1 || len(args) > 2 {
			return bad("%s takes counter:NAME and an optional amount", keyword)
		}
		name, ok := operand(args[0], "counter:")
		if !ok {
			return bad("expected counter:NAME")
		}
		amount := 1
		if len(args) == 2 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v < 0 {
				return bad("invalid amount %q", args[1])
			}
			amount = v
		}
		op := domain.OpIncrCounter
		if keyword == "decr" {
			op = domain.OpDecrCounter
		}
		return domain.Directive{Op: op, Target: name, Amount: amount}, nil
	}

	return domain.Directive{}, st.fail(num, col+len(TokenDirective)+1, domain.ParseUnknownDirective, construct, "unknown directive %q", keyword)
}

func operand(arg, prefix string) (string, bool) {
	name, ok := strings.CutPrefix(arg, prefix)
	return name, ok && validName(name)
}

func (st *parseState) option(num, col int, construct, rest string) (domain.Option, error) {
	label, after, found := strings.Cut(rest, TokenJump)
	label = strings.TrimSpace(label)
	if !found || label == "" {
		return domain.Option{}, st.fail(num, col, domain.ParseMalformedOption, construct, "expected LABEL -> DESTINATION")
	}

	after = strings.TrimSpace(after)
	destText, guardText, _ := strings.Cut(after, " ")
	dest, err := ParseDestination(destText)
	if err != nil {
		return domain.Option{}, st.fail(num, col, domain.ParseMalformedDestination, construct, "%v", err)
	}

	label, keywords, err := st.keywords(num, col, construct, label)
	if err != nil {
		return domain.Option{}, err
	}
	opt := domain.Option{Label: label, Keywords: keywords, Destination: dest}
	guardText = strings.TrimSpace(guardText)
	if guardText == "" {
		return opt, nil
	}
	src, ok := strings.CutPrefix(guardText, "when ")
	if !ok {
		return domain.Option{}, st.fail(num, col, domain.ParseMalformedOption, construct, "unexpected %q after destination (guards start with 'when')", guardText)
	}
	guardCol := col + strings.Index(construct, guardText) + len("when ")
	guard, err := st.predicate(num, guardCol, construct, src)
	if err != nil {
		return domain.Option{}, err
	}
	opt.Guard = guard
	return opt, nil
}

// keywords splits a trailing "[a, b, @vocab]" off an option label.
func (st *parseState) keywords(num, col int, construct, label string) (string, []string, error) {
	if !strings.HasSuffix(label, "]") {
		return label, nil, nil
	}
	open := strings.LastIndex(label, "[")
	if open < 0 {
		return "", nil, st.fail(num, col, domain.ParseMalformedOption, construct, "unmatched ']' in option label")
	}
	text := strings.TrimSpace(label[:open])
	if text == "" {
		return "", nil, st.fail(num, col, domain.ParseMalformedOption, construct, "option has keywords but no label")
	}
	kwCol := col + strings.Index(construct, label) + open + 1
	var out []string
	for _, kw := range strings.Split(label[open+1:len(label)-1], ",") {
		kw = strings.TrimSpace(kw)
		switch {
		case kw == "":
			return "", nil, st.fail(num, kwCol, domain.ParseMalformedOption, construct, "empty option keyword")
		case strings.HasPrefix(kw, "@") && !adventure.IsVocabulary(kw):
			return "", nil, st.fail(num, kwCol, domain.ParseMalformedOption, construct, "unknown word list %q", kw)
		}
		out = append(out, kw)
	}
	return text, out, nil
}

// ParseDestination parses "block", "file:block" or "file:".
func ParseDestination(s string) (domain.Destination, error) {
	if s == "" {
		return domain.Destination{}, fmt.Errorf("missing destination")
	}
	file, block, isFile := strings.Cut(s, ":")
	if !isFile {
		if !validName(s) {
			return domain.Destination{}, fmt.Errorf("invalid block name %q", s)
		}
		return domain.BlockRef(s), nil
	}
	if !validFileID(file) {
		return domain.Destination{}, fmt.Errorf("invalid file id %q", file)
	}
	if block != "" && !validName(block) {
		return domain.Destination{}, fmt.Errorf("invalid block name %q", block)
	}
	return domain.FileRef(file, block), nil
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '.' || c == '-'
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}

func validFileID(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameChar(s[i]) && s[i] != '/' {
			return false
		}
	}
	return true
}
