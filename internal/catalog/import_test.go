package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/abelbrown/cardpool/internal/card"
)

const dumpLines = `{"id":"1","name":"Opt","lang":"en","oracle_text":"Scry 1. Draw a card.","type_line":"Instant","color_identity":["U"],"image_uris":{"normal":"https://img/opt.jpg"}}
{"id":"2","name":"Opt","lang":"en","oracle_text":"Scry 1. Draw a card.","type_line":"Instant","color_identity":["U"]}
{"id":"3","name":"Opción","lang":"es","oracle_text":"Adivina 1.","type_line":"Instantáneo"}

{"id":"4","name":"Forest","lang":"en","oracle_text":"","type_line":"Basic Land — Forest"}
{"id":"5","name":"Giant Growth","lang":"en","oracle_text":"Target creature gets +3/+3 until end of turn.","type_line":"Instant","color_identity":["G"]}
`

func TestImportJSONLines(t *testing.T) {
	st := openTest(t)
	stats, err := st.Import(context.Background(), strings.NewReader(dumpLines))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Read != 5 || stats.Skipped != 3 || stats.Imported != 2 {
		t.Errorf("stats = %+v", stats)
	}
	got, _ := st.CardsByID([]string{"1"})
	if len(got) != 1 || got[0].ImageURI != "https://img/opt.jpg" {
		t.Errorf("image should come from image_uris.normal, got %+v", got)
	}
	if !got[0].Identity().Has(card.Blue) {
		t.Error("color identity lost")
	}
}

func TestImportJSONArray(t *testing.T) {
	st := openTest(t)
	dump := `  [
		{"id":"a","name":"Shock","lang":"en","oracle_text":"Shock deals 2 damage to any target."},
		{"id":"b","name":"Duress","lang":"en","oracle_text":"Target opponent reveals their hand."}
	]`
	stats, err := st.Import(context.Background(), strings.NewReader(dump))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Imported != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImportEmpty(t *testing.T) {
	st := openTest(t)
	stats, err := st.Import(context.Background(), strings.NewReader(""))
	if err != nil || stats.Read != 0 {
		t.Errorf("empty import = %+v, %v", stats, err)
	}
}

func TestImportMalformed(t *testing.T) {
	st := openTest(t)
	if _, err := st.Import(context.Background(), strings.NewReader("{\"id\":\n")); err == nil {
		t.Error("expected decode error")
	}
}
