// Package packet parses the nested-list packets of a distress signal and
// orders them.
//
// A packet is a list whose items are non-negative integers or further lists,
// written as
//
//	[1,[2,[3,[4,[5,6,7]]]],8,9]
//
// Elements are values. They are never mutated after construction and carry
// no identity beyond their contents.
package packet

import (
	"strconv"
	"strings"
)

// Element is either a Number or a List. The zero Element is Number(0).
type Element struct {
	num    int
	items  []Element
	isList bool
}

func Number(n int) Element {
	return Element{num: n}
}

// List returns a list element holding a copy of items.
func List(items ...Element) Element {
	return Element{items: append([]Element{}, items...), isList: true}
}

func (e Element) IsList() bool { return e.isList }

// Int returns the value of a Number. It is 0 for lists.
func (e Element) Int() int { return e.num }

// Len returns the number of items of a List. It is 0 for numbers.
func (e Element) Len() int { return len(e.items) }

// At returns item i of a List.
func (e Element) At(i int) Element { return e.items[i] }

// String prints e in the same notation Parse reads.
func (e Element) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e Element) write(b *strings.Builder) {
	if !e.isList {
		b.WriteString(strconv.Itoa(e.num))
		return
	}

	b.WriteByte('[')
	for i, item := range e.items {
		if i > 0 {
			b.WriteByte(',')
		}
		item.write(b)
	}
	b.WriteByte(']')
}
