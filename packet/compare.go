package packet

import (
	"cmp"
	"slices"
)

// Compare returns -1, 0 or +1 as a is less than, equal to or greater than b.
//
// Numbers compare numerically. Lists compare item by item, the first
// differing item deciding, and a list that runs out first is the smaller.
// When a number meets a list the number is treated as a list of one.
//
// Compare is a total order and can be handed to slices.SortFunc directly.
func Compare(a, b Element) int {
	switch {
	case !a.isList && !b.isList:
		return cmp.Compare(a.num, b.num)
	case !a.isList:
		return slices.CompareFunc([]Element{a}, b.items, Compare)
	case !b.isList:
		return slices.CompareFunc(a.items, []Element{b}, Compare)
	}

	return slices.CompareFunc(a.items, b.items, Compare)
}

func Less(a, b Element) bool {
	return Compare(a, b) < 0
}

// Equal reports whether a and b are structurally identical. It is stricter
// than Compare: 1 and [1] compare as 0 but are not Equal.
func Equal(a, b Element) bool {
	if a.isList != b.isList {
		return false
	}
	if !a.isList {
		return a.num == b.num
	}

	return slices.EqualFunc(a.items, b.items, Equal)
}
