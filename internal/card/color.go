package card

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownColor is returned when a symbol is not one of W, U, B, R, G.
var ErrUnknownColor = errors.New("unknown mana color")

// Color is a single mana symbol.
type Color string

// The five mana colors, in canonical WUBRG order.
const (
	White Color = "W"
	Blue  Color = "U"
	Black Color = "B"
	Red   Color = "R"
	Green Color = "G"
)

// Colors lists the mana alphabet in canonical order.
var Colors = []Color{White, Blue, Black, Red, Green}

// Name returns the long name of the color ("White", "Blue", ...).
func (c Color) Name() string {
	switch c {
	case White:
		return "White"
	case Blue:
		return "Blue"
	case Black:
		return "Black"
	case Red:
		return "Red"
	case Green:
		return "Green"
	}
	return string(c)
}

// ParseColor accepts a symbol in either case.
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Colors {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

// ColorSet is a set of mana colors. The zero value is the empty set,
// which means "no filter" when used as a selection filter.
type ColorSet uint8

func bit(c Color) ColorSet {
	for i, known := range Colors {
		if c == known {
			return 1 << i
		}
	}
	return 0
}

// NewColorSet builds a set from symbols, ignoring anything outside WUBRG.
func NewColorSet(colors ...Color) ColorSet {
	var s ColorSet
	for _, c := range colors {
		s |= bit(c)
	}
	return s
}

// ParseColorSet builds a set from string symbols and fails on the first
// unknown one.
func ParseColorSet(symbols []string) (ColorSet, error) {
	var s ColorSet
	for _, sym := range symbols {
		c, err := ParseColor(sym)
		if err != nil {
			return 0, err
		}
		s |= bit(c)
	}
	return s, nil
}

// Has reports whether c is in the set.
func (s ColorSet) Has(c Color) bool {
	b := bit(c)
	return b != 0 && s&b != 0
}

// Toggle adds c when absent and removes it when present.
func (s ColorSet) Toggle(c Color) ColorSet {
	return s ^ bit(c)
}

// ContainsAll reports whether every color of other is in s.
func (s ColorSet) ContainsAll(other ColorSet) bool {
	return s&other == other
}

// Empty reports whether the set has no colors.
func (s ColorSet) Empty() bool {
	return s == 0
}

// Len returns the number of colors in the set.
func (s ColorSet) Len() int {
	n := 0
	for _, c := range Colors {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Colors returns the members in WUBRG order.
func (s ColorSet) Colors() []Color {
	out := make([]Color, 0, len(Colors))
	for _, c := range Colors {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Symbols returns the members as strings in WUBRG order. Never nil, so it
// serializes as [] rather than null.
func (s ColorSet) Symbols() []string {
	out := make([]string, 0, len(Colors))
	for _, c := range s.Colors() {
		out = append(out, string(c))
	}
	return out
}

// String renders the set as concatenated symbols, e.g. "WUG".
func (s ColorSet) String() string {
	return strings.Join(s.Symbols(), "")
}
