package peg

import (
	"fmt"
	"unicode/utf8"
)

func Seq(rules ...Rule) Rule {
	return &seqRule{rules: rules}
}

func Choice(rules ...Rule) Rule {
	return &choiceRule{rules: rules}
}

func Ch(r rune) Rule {
	return &chRule{r: r}
}

func ChRange(min, max rune) Rule {
	return &chRangeRule{
		min: min,
		max: max,
	}
}

func Indirect() *IndirectRule {
	return &IndirectRule{}
}

func Action(r Rule, f ActionFunc) Rule {
	return &actionRule{
		r: r,
		f: f,
	}
}

// Predicate fails when f rejects the node matched by r. what names the
// rejected value in syntax errors.
func Predicate(r Rule, what string, f PredicateFunc) Rule {
	return &predicateRule{
		r:    r,
		what: what,
		f:    f,
	}
}

func Many(r Rule) Rule {
	return Choice(Many1(r), Seq())
}

func Many1(r Rule) Rule {
	return &many1Rule{r: r}
}

// SepBy matches zero or more r separated by sep. The value is a flat []Node
// of the r matches; separators are dropped.
func SepBy(r, sep Rule) Rule {
	return &sepByRule{r: r, sep: sep}
}

// SepBy1 is SepBy requiring at least one r.
func SepBy1(r, sep Rule) Rule {
	return &sepByRule{r: r, sep: sep, atLeastOne: true}
}

func End() Rule {
	return endRule{}
}

// Left matches left then right and keeps only the value of left.
func Left(left, right Rule) Rule {
	return &leftRule{
		left:  left,
		right: right,
	}
}

type seqRule struct {
	rules []Rule
}

func (s *seqRule) parse(p *parserState, pos int) RuleResult {
	var start = pos
	var ret []Node

	for _, rule := range s.rules {
		res := p.applyRule(rule, pos)
		if res.Failed {
			return res
		}

		pos = res.Node.End

		if res.Node.Value != nil {
			ret = append(ret, res.Node)
		}
	}

	return RuleResult{
		Node: Node{
			Value: ret,
			Start: start,
			End:   pos,
		},
	}
}

type choiceRule struct {
	rules []Rule
}

func (c *choiceRule) parse(p *parserState, pos int) RuleResult {
	for _, rule := range c.rules {
		res := p.applyRule(rule, pos)
		if !res.Failed {
			return res
		}
	}

	return RuleResult{Failed: true}
}

type chRule struct {
	r rune
}

func (c *chRule) parse(p *parserState, pos int) RuleResult {
	if pos >= len(p.input) {
		return p.fail(pos, quote(c.r))
	}

	r, n := utf8.DecodeRune(p.input[pos:])
	if r != c.r || r == utf8.RuneError {
		// even if it is a rune error, we don't trust it.
		return p.fail(pos, quote(c.r))
	}

	return RuleResult{
		Node: Node{
			Value: r,
			Start: pos,
			End:   pos + n,
		},
	}
}

type chRangeRule struct {
	min, max rune
}

func (c *chRangeRule) parse(p *parserState, pos int) RuleResult {
	what := fmt.Sprintf("%s-%s", quote(c.min), quote(c.max))

	if pos >= len(p.input) {
		return p.fail(pos, what)
	}

	r, n := utf8.DecodeRune(p.input[pos:])
	if r < c.min || r > c.max || r == utf8.RuneError {
		return p.fail(pos, what)
	}

	return RuleResult{
		Node: Node{
			Value: r,
			Start: pos,
			End:   pos + n,
		},
	}
}

type IndirectRule struct {
	Rule
}

func (r *IndirectRule) Bind(rule Rule) {
	r.Rule = rule
}

type actionRule struct {
	r Rule
	f ActionFunc
}

func (a *actionRule) parse(p *parserState, pos int) RuleResult {
	res := p.applyRule(a.r, pos)
	if res.Failed {
		return res
	}

	res.Node = a.f(res.Node)

	return res
}

type predicateRule struct {
	r    Rule
	what string
	f    PredicateFunc
}

func (a *predicateRule) parse(p *parserState, pos int) RuleResult {
	res := p.applyRule(a.r, pos)
	if res.Failed {
		return res
	}

	if !a.f(res.Node) {
		return p.fail(res.Node.End, a.what)
	}

	return res
}

type many1Rule struct {
	r Rule
}

func (m *many1Rule) parse(p *parserState, pos int) RuleResult {
	var start = pos
	var ret []Node

	for {
		res := p.applyRule(m.r, pos)
		if res.Failed || res.Node.End == pos {
			break
		}

		pos = res.Node.End

		if res.Node.Value != nil {
			ret = append(ret, res.Node)
		}
	}

	if pos == start {
		return RuleResult{Failed: true}
	}

	return RuleResult{
		Node: Node{
			Value: ret,
			Start: start,
			End:   pos,
		},
	}
}

type sepByRule struct {
	r, sep     Rule
	atLeastOne bool
}

func (s *sepByRule) parse(p *parserState, pos int) RuleResult {
	var start = pos
	var ret []Node

	res := p.applyRule(s.r, pos)
	if res.Failed {
		if s.atLeastOne {
			return res
		}
		return RuleResult{Node: Node{Value: ret, Start: start, End: start}}
	}

	for {
		ret = append(ret, res.Node)
		pos = res.Node.End

		// a trailing separator is left unconsumed
		sep := p.applyRule(s.sep, pos)
		if sep.Failed {
			break
		}
		res = p.applyRule(s.r, sep.Node.End)
		if res.Failed {
			break
		}
	}

	return RuleResult{
		Node: Node{
			Value: ret,
			Start: start,
			End:   pos,
		},
	}
}

type endRule struct{}

func (endRule) parse(p *parserState, pos int) RuleResult {
	if pos < len(p.input) {
		return p.fail(pos, "end of input")
	}

	return RuleResult{Node: Node{Start: pos, End: pos}}
}

type leftRule struct {
	left, right Rule
}

func (l *leftRule) parse(p *parserState, pos int) RuleResult {
	resL := p.applyRule(l.left, pos)
	if resL.Failed {
		return resL
	}

	resR := p.applyRule(l.right, resL.Node.End)
	if resR.Failed {
		return resR
	}

	resL.Node.End = resR.Node.End

	return resL
}
