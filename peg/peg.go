// Package peg is a small packrat parser for PEG grammars built out of
// combinators. Every (rule, position) result is memoized, so backtracking
// between alternatives never re-parses the same span twice.
//
// Left-recursive rules are not grown: a rule that re-enters itself at the same
// position sees a failed seed and the alternative fails.
package peg

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Parse applies r at the start of input. The match does not need to cover all
// of input; sequence r with End to require that.
func Parse(input []byte, r Rule) RuleResult {
	return newParserState(input).applyRule(r, 0)
}

// Match is Parse with failures reported as a *SyntaxError pointing at the
// farthest position any terminal was tried.
func Match(input []byte, r Rule) (Node, error) {
	p := newParserState(input)

	res := p.applyRule(r, 0)
	if res.Failed {
		return Node{}, p.syntaxError()
	}

	return res.Node, nil
}

type parserState struct {
	input []byte
	memos map[memoIndex]RuleResult

	farthest int
	expected []string
}

func newParserState(input []byte) *parserState {
	return &parserState{
		input: input,
		memos: make(map[memoIndex]RuleResult),
	}
}

func (p *parserState) applyRule(rule Rule, pos int) RuleResult {
	if r, ok := rule.(*IndirectRule); ok {
		if r.Rule == nil {
			panic("peg: indirect rule applied before Bind")
		}
		rule = r.Rule // dereference indirect
	}

	idx := memoIndex{rule, pos}
	if res, ok := p.memos[idx]; ok {
		return res
	}

	// seed so that left recursion fails instead of looping
	p.memos[idx] = RuleResult{Failed: true}

	res := rule.parse(p, pos)
	p.memos[idx] = res
	return res
}

// fail records that what was expected at pos and returns a failed result.
func (p *parserState) fail(pos int, what string) RuleResult {
	switch {
	case pos > p.farthest:
		p.farthest = pos
		p.expected = append(p.expected[:0], what)
	case pos == p.farthest && !slices.Contains(p.expected, what):
		p.expected = append(p.expected, what)
	}

	return RuleResult{Failed: true}
}

func (p *parserState) syntaxError() *SyntaxError {
	found := "end of input"
	if p.farthest < len(p.input) {
		r, _ := utf8.DecodeRune(p.input[p.farthest:])
		found = quote(r)
	}

	return &SyntaxError{
		Pos:      p.farthest,
		Expected: slices.Clone(p.expected),
		Found:    found,
	}
}

// SyntaxError describes the farthest point a parse got to before failing.
type SyntaxError struct {
	Pos      int // byte offset
	Expected []string
	Found    string
}

func (e *SyntaxError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("syntax error at offset %d: unexpected %s", e.Pos, e.Found)
	}

	return fmt.Sprintf("syntax error at offset %d: expected %s, found %s",
		e.Pos, strings.Join(e.Expected, " or "), e.Found)
}

type Rule interface {
	parse(p *parserState, pos int) RuleResult
}

type RuleResult struct {
	// if Failed, node is invalid
	Failed bool

	Node Node
}

// Node is a matched span. Start and End are byte offsets, End exclusive.
type Node struct {
	Value      any
	Start, End int
}

type memoIndex struct {
	rule Rule
	pos  int
}

type ActionFunc func(node Node) Node

type PredicateFunc func(node Node) bool

func quote(r rune) string {
	if r == utf8.RuneError {
		return "invalid UTF-8"
	}
	return fmt.Sprintf("%q", r)
}
