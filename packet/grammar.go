package packet

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/stephenmw/distress/peg"
)

// ErrMalformed is wrapped by every error Parse and ParsePrefix return.
var ErrMalformed = errors.New("malformed packet")

func init() {
	item.Bind(item_actual)
}

var (
	line = peg.Left(list, peg.End())

	list = peg.Action(
		peg.Seq(open_bracket, items, close_bracket),
		func(n peg.Node) peg.Node {
			// [ '[' items ']' ]
			nodes := n.Value.([]peg.Node)[1].Value.([]peg.Node)

			elems := make([]Element, len(nodes))
			for i, node := range nodes {
				elems[i] = node.Value.(Element)
			}

			n.Value = Element{items: elems, isList: true}
			return n
		},
	)

	items = peg.SepBy(item, comma)

	item        = peg.Indirect()
	item_actual = peg.Choice(number, list)

	number = peg.Predicate(toNumber(digits), "integer that fits in an int",
		func(n peg.Node) bool {
			_, ok := n.Value.(Element)
			return ok
		},
	)

	digits = peg.Many1(peg.ChRange('0', '9'))

	open_bracket  = peg.Ch('[')
	close_bracket = peg.Ch(']')
	comma         = peg.Ch(',')
)

// toNumber turns a run of digit runes into a Number. The value is left nil on
// overflow.
func toNumber(r peg.Rule) peg.Rule {
	return peg.Action(r, func(n peg.Node) peg.Node {
		nodes := n.Value.([]peg.Node)

		runes := make([]rune, 0, len(nodes))
		for _, node := range nodes {
			runes = append(runes, node.Value.(rune))
		}

		num, err := strconv.Atoi(string(runes))
		if err == nil {
			n.Value = Number(num)
		} else {
			n.Value = nil
		}

		return n
	})
}

// Parse reads a single packet. All of s must be consumed.
func Parse(s string) (Element, error) {
	n, err := peg.Match([]byte(s), line)
	if err != nil {
		return Element{}, fmt.Errorf("%w %q: %w", ErrMalformed, s, err)
	}

	return n.Value.(Element), nil
}

// ParsePrefix reads the packet at the start of s and returns whatever follows
// its closing bracket.
func ParsePrefix(s string) (Element, string, error) {
	n, err := peg.Match([]byte(s), list)
	if err != nil {
		return Element{}, s, fmt.Errorf("%w %q: %w", ErrMalformed, s, err)
	}

	return n.Value.(Element), s[n.End:], nil
}

// MustParse is Parse for literals known to be well formed.
func MustParse(s string) Element {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}
