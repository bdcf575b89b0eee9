//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package soma

import "math"

type coordKind int

const (
	coordAll coordKind = iota
	coordIntList
	coordIntRange
	coordStrList
	coordStrRange
)

// Coord selects values along one index dimension: everything, an explicit
// value list, or an inclusive range that may be unbounded on either side.
// The zero value selects the whole dimension.
type Coord struct {
	kind coordKind
	ints []int64
	strs []string
	lo   *int64
	hi   *int64
	slo  *string
	shi  *string
}

// All selects the entire domain of a dimension.
func All() Coord {
	return Coord{kind: coordAll}
}

// At selects a single integer coordinate.
func At(v int64) Coord {
	return Coord{kind: coordIntList, ints: []int64{v}}
}

// ListOf selects an explicit set of integer coordinates. An empty list
// selects nothing (and is not an error).
func ListOf(vs ...int64) Coord {
	return Coord{kind: coordIntList, ints: vs}
}

// RangeOf selects the doubly-inclusive range [lo, hi].
func RangeOf(lo, hi int64) Coord {
	return Coord{kind: coordIntRange, lo: &lo, hi: &hi}
}

// From selects every coordinate >= lo.
func From(lo int64) Coord {
	return Coord{kind: coordIntRange, lo: &lo}
}

// Until selects every coordinate <= hi.
func Until(hi int64) Coord {
	return Coord{kind: coordIntRange, hi: &hi}
}

// AtString selects a single string coordinate.
func AtString(v string) Coord {
	return Coord{kind: coordStrList, strs: []string{v}}
}

// StringListOf selects an explicit set of string coordinates.
func StringListOf(vs ...string) Coord {
	return Coord{kind: coordStrList, strs: vs}
}

// StringRangeOf selects the doubly-inclusive string range [lo, hi].
func StringRangeOf(lo, hi string) Coord {
	return Coord{kind: coordStrRange, slo: &lo, shi: &hi}
}

func (c Coord) IsAll() bool { return c.kind == coordAll }

// IsEmptyList reports whether the selector is an explicit empty list.
func (c Coord) IsEmptyList() bool {
	switch c.kind {
	case coordIntList:
		return len(c.ints) == 0
	case coordStrList:
		return len(c.strs) == 0
	default:
		return false
	}
}

// IsList reports whether the selector is an explicit value list.
func (c Coord) IsList() bool {
	return c.kind == coordIntList || c.kind == coordStrList
}

// IntList returns the values of an integer list selector.
func (c Coord) IntList() []int64 {
	return c.ints
}

// IsString reports whether the selector holds string values.
func (c Coord) IsString() bool {
	return c.kind == coordStrList || c.kind == coordStrRange
}

func (c Coord) Validate() error {
	switch c.kind {
	case coordIntRange:
		if c.lo != nil && c.hi != nil && *c.lo > *c.hi {
			return Coordf("range lower bound %d exceeds upper bound %d", *c.lo, *c.hi)
		}
	case coordStrRange:
		if c.slo != nil && c.shi != nil && *c.slo > *c.shi {
			return Coordf("range lower bound %q exceeds upper bound %q", *c.slo, *c.shi)
		}
	}
	return nil
}

// MatchesInt reports whether the integer coordinate v is selected.
func (c Coord) MatchesInt(v int64) bool {
	switch c.kind {
	case coordAll:
		return true
	case coordIntList:
		for _, x := range c.ints {
			if x == v {
				return true
			}
		}
		return false
	case coordIntRange:
		if c.lo != nil && v < *c.lo {
			return false
		}
		if c.hi != nil && v > *c.hi {
			return false
		}
		return true
	default:
		return false
	}
}

// MatchesString reports whether the string coordinate v is selected.
func (c Coord) MatchesString(v string) bool {
	switch c.kind {
	case coordAll:
		return true
	case coordStrList:
		for _, x := range c.strs {
			if x == v {
				return true
			}
		}
		return false
	case coordStrRange:
		if c.slo != nil && v < *c.slo {
			return false
		}
		if c.shi != nil && v > *c.shi {
			return false
		}
		return true
	default:
		return false
	}
}

// Matches applies the selector to an int64 or string value; any other
// value type never matches.
func (c Coord) Matches(v interface{}) bool {
	switch x := v.(type) {
	case int64:
		return c.MatchesInt(x)
	case string:
		return c.MatchesString(x)
	default:
		return false
	}
}

// IntBounds clamps the selection against the dimension domain [0, max)
// and returns the inclusive bounds of the selected region. ok is false
// when the selection is empty within the domain. Only valid for integer
// selectors.
func (c Coord) IntBounds(max int64) (lo, hi int64, ok bool) {
	switch c.kind {
	case coordAll:
		return 0, max - 1, max > 0
	case coordIntRange:
		lo = 0
		hi = max - 1
		if c.lo != nil {
			lo = *c.lo
		}
		if c.hi != nil && *c.hi < hi {
			hi = *c.hi
		}
		return lo, hi, lo <= hi && lo >= 0 && lo < max
	case coordIntList:
		if len(c.ints) == 0 {
			return 0, 0, false
		}
		lo = math.MaxInt64
		hi = math.MinInt64
		for _, v := range c.ints {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		return lo, hi, lo >= 0 && hi < max
	default:
		return 0, 0, false
	}
}
