package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestOverrideWins(t *testing.T) {
	got, err := Derive("fixed-user")
	if err != nil || got != "fixed-user" {
		t.Errorf("Derive(override) = %q, %v", got, err)
	}
}

func TestFromNameIsStable(t *testing.T) {
	a := FromName("10.0.0.7")
	b := FromName("10.0.0.7")
	if a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}
	if a == FromName("10.0.0.8") {
		t.Error("different seeds should produce different ids")
	}
	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("not a uuid: %v", err)
	}
	if id.Version() != 5 {
		t.Errorf("Version() = %d, want 5", id.Version())
	}
}

func TestDeriveIsStable(t *testing.T) {
	first, err := Derive("")
	if err != nil {
		t.Skipf("no address or hostname in this environment: %v", err)
	}
	second, _ := Derive("")
	if first != second {
		t.Errorf("Derive not stable: %q vs %q", first, second)
	}
}
