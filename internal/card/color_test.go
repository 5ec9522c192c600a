package card

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"W", White, false},
		{"u", Blue, false},
		{" b ", Black, false},
		{"R", Red, false},
		{"g", Green, false},
		{"C", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownColor) {
				t.Errorf("ParseColor(%q) error = %v, want ErrUnknownColor", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorSetToggle(t *testing.T) {
	var s ColorSet
	if !s.Empty() {
		t.Fatal("zero ColorSet should be empty")
	}

	s = s.Toggle(Green).Toggle(White)
	if !s.Has(Green) || !s.Has(White) {
		t.Errorf("expected G and W in set, got %s", s)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	s = s.Toggle(Green)
	if s.Has(Green) {
		t.Error("second toggle should remove G")
	}
	if s.String() != "W" {
		t.Errorf("String() = %q, want %q", s.String(), "W")
	}
}

func TestColorSetCanonicalOrder(t *testing.T) {
	s := NewColorSet(Green, Red, Blue, White)
	if diff := cmp.Diff([]string{"W", "U", "R", "G"}, s.Symbols()); diff != "" {
		t.Errorf("Symbols() mismatch (-want +got):\n%s", diff)
	}
}

func TestColorSetSymbolsNeverNil(t *testing.T) {
	var s ColorSet
	if s.Symbols() == nil {
		t.Error("Symbols() on empty set should be an empty slice, not nil")
	}
}

func TestColorSetContainsAll(t *testing.T) {
	cardColors := NewColorSet(White, Blue, Black)
	if !cardColors.ContainsAll(NewColorSet(White, Black)) {
		t.Error("WUB should contain WB")
	}
	if cardColors.ContainsAll(NewColorSet(White, Green)) {
		t.Error("WUB should not contain WG")
	}
	if !cardColors.ContainsAll(0) {
		t.Error("every set contains the empty set")
	}
}

func TestParseColorSet(t *testing.T) {
	s, err := ParseColorSet([]string{"w", "G"})
	if err != nil {
		t.Fatalf("ParseColorSet: %v", err)
	}
	if s.String() != "WG" {
		t.Errorf("got %q, want WG", s.String())
	}

	if _, err := ParseColorSet([]string{"W", "X"}); !errors.Is(err, ErrUnknownColor) {
		t.Errorf("expected ErrUnknownColor, got %v", err)
	}
}

func TestCardIdentityIgnoresColorless(t *testing.T) {
	c := Card{ID: "1", ColorIdentity: []string{"C", "R", "R"}}
	if got := c.Identity(); got != NewColorSet(Red) {
		t.Errorf("Identity() = %s, want R", got)
	}
}

func TestIDs(t *testing.T) {
	cards := []Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	if diff := cmp.Diff([]string{"a", "b", "c"}, IDs(cards)); diff != "" {
		t.Errorf("IDs mismatch (-want +got):\n%s", diff)
	}
}
