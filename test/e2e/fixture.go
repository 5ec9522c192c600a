// Package e2e drives cardpool against a local recommendation service
// backed by a seeded catalog.
package e2e

import (
	"fmt"
	"net/http/httptest"
	"os"
	"time"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/catalog"
	"github.com/abelbrown/cardpool/internal/devserver"
)

// fixtureCards is a small catalog with enough overlap for similarity and
// search to give predictable answers.
var fixtureCards = []card.Card{
	{ID: "bolt", Name: "Lightning Bolt", ManaCost: "{R}", TypeLine: "Instant", OracleText: "Lightning Bolt deals 3 damage to any target.", ColorIdentity: []string{"R"}},
	{ID: "shock", Name: "Shock", ManaCost: "{R}", TypeLine: "Instant", OracleText: "Shock deals 2 damage to any target.", ColorIdentity: []string{"R"}},
	{ID: "helix", Name: "Lightning Helix", ManaCost: "{R}{W}", TypeLine: "Instant", OracleText: "Lightning Helix deals 3 damage to any target and you gain 3 life.", ColorIdentity: []string{"R", "W"}},
	{ID: "elves", Name: "Llanowar Elves", ManaCost: "{G}", TypeLine: "Creature — Elf Druid", OracleText: "{T}: Add {G}.", ColorIdentity: []string{"G"}, Power: "1", Toughness: "1"},
	{ID: "birds", Name: "Birds of Paradise", ManaCost: "{G}", TypeLine: "Creature — Bird", OracleText: "Flying\n{T}: Add one mana of any color.", ColorIdentity: []string{"G"}, Keywords: []string{"Flying"}, Power: "0", Toughness: "1"},
	{ID: "angel", Name: "Serra Angel", ManaCost: "{3}{W}{W}", TypeLine: "Creature — Angel", OracleText: "Flying, vigilance", ColorIdentity: []string{"W"}, Keywords: []string{"Flying", "Vigilance"}, Power: "4", Toughness: "4"},
	{ID: "counter", Name: "Counterspell", ManaCost: "{U}{U}", TypeLine: "Instant", OracleText: "Counter target spell.", ColorIdentity: []string{"U"}},
	{ID: "negate", Name: "Negate", ManaCost: "{1}{U}", TypeLine: "Instant", OracleText: "Counter target noncreature spell.", ColorIdentity: []string{"U"}},
	{ID: "doom", Name: "Doom Blade", ManaCost: "{1}{B}", TypeLine: "Instant", OracleText: "Destroy target nonblack creature.", ColorIdentity: []string{"B"}},
	{ID: "murder", Name: "Murder", ManaCost: "{1}{B}{B}", TypeLine: "Instant", OracleText: "Destroy target creature.", ColorIdentity: []string{"B"}},
	{ID: "growth", Name: "Giant Growth", ManaCost: "{G}", TypeLine: "Instant", OracleText: "Target creature gets +3/+3 until end of turn.", ColorIdentity: []string{"G"}},
	{ID: "wrath", Name: "Wrath of God", ManaCost: "{2}{W}{W}", TypeLine: "Sorcery", OracleText: "Destroy all creatures. They can't be regenerated.", ColorIdentity: []string{"W"}},
}

// seedCatalog opens a catalog at dbPath and loads the fixture cards.
func seedCatalog(dbPath string) (*catalog.Store, error) {
	st, err := catalog.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := st.SaveCards(fixtureCards); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return st, nil
}

// startService serves st over HTTP on a loopback port.
func startService(st *catalog.Store) *httptest.Server {
	return httptest.NewServer(devserver.New(st, nil).Handler())
}

func readSnapshot(f *os.File) string {
	if err := f.SetReadDeadline(time.Now().Add(50 * time.Millisecond)); err != nil {
		return ""
	}
	out := make([]byte, 0, 8192)
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			break
		}
	}
	return string(out)
}
