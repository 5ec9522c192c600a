package ui

import (
	"fmt"
	"strings"

	"github.com/abelbrown/cardpool/internal/card"
	"github.com/abelbrown/cardpool/internal/ledger"
	"github.com/abelbrown/cardpool/internal/strategy"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const tilesPerRow = 3

// View renders the App.
func (a App) View() string {
	var b strings.Builder

	b.WriteString(a.renderControls())
	b.WriteString("\n")
	if a.searching || a.filter.HasQuery() {
		b.WriteString(a.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	main := a.renderPool()
	side := Sidebar.Render(a.renderSidebar())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, main, side))
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", a.err)))
		b.WriteString("\n")
	}
	b.WriteString(a.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(a.help.View(a.keys)))

	return b.String()
}

// renderControls draws the strategy buttons and the mana toggles.
func (a App) renderControls() string {
	var parts []string
	sig := a.signals()
	for i, s := range strategy.Buttons {
		label := fmt.Sprintf("%d %s", i+1, s.Label())
		switch {
		case !strategy.Enabled(s, sig):
			parts = append(parts, ButtonDisabled.Render(label))
		case s == a.active:
			parts = append(parts, ButtonActive.Render(label))
		default:
			parts = append(parts, ButtonEnabled.Render(label))
		}
	}
	if a.active == strategy.TextSearch {
		parts = append(parts, ButtonActive.Render("/ Search"))
	}

	var mana []string
	for _, c := range card.Colors {
		mana = append(mana, manaSymbol(string(c), a.filter.Mana.Has(c)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(parts, ""), "  ", strings.Join(mana, ""))
}

func (a App) renderPool() string {
	cards := a.pool.Cards()
	if len(cards) == 0 {
		if a.pool.Loading() {
			return fmt.Sprintf(" %s Finding cards...", a.spinner.View())
		}
		return StatusBarText.Render(" No cards. Try another strategy or loosen the mana filter.")
	}

	var rows []string
	for start := 0; start < len(cards); start += tilesPerRow {
		end := min(start+tilesPerRow, len(cards))
		var tiles []string
		for i := start; i < end; i++ {
			tiles = append(tiles, a.renderTile(cards[i], i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	if a.pool.Loading() {
		rows = append(rows, fmt.Sprintf(" %s topping up...", a.spinner.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a App) renderTile(c card.Card, i int) string {
	style := CardTile
	switch {
	case c.ID == a.pool.Highlight():
		style = HighlightTile
	case i == a.cursor:
		style = CursorTile
	}

	lines := []string{
		CardName.Render(truncate(c.Name, 22)),
		CardMeta.Render(c.ManaCost),
		CardMeta.Render(truncate(c.TypeLine, 22)),
	}
	if c.Power != "" || c.Toughness != "" {
		lines = append(lines, CardMeta.Render(c.Power+"/"+c.Toughness))
	}
	var idn []string
	for _, col := range c.Identity().Colors() {
		idn = append(idn, manaSymbol(string(col), true))
	}
	lines = append(lines, strings.Join(idn, ""))
	return style.Render(strings.Join(lines, "\n"))
}

func (a App) renderSidebar() string {
	var tabs []string
	for v := sidebarView(0); v < sidebarViews; v++ {
		if v == a.sidebar {
			tabs = append(tabs, SidebarTitle.Render(v.String()))
		} else {
			tabs = append(tabs, SidebarTab.Render(v.String()))
		}
	}
	header := strings.Join(tabs, " ")

	var body string
	switch a.sidebar {
	case viewDeck:
		body = a.renderDeck()
	case viewInteractions:
		body = a.renderInteractions()
	default:
		body = a.renderInfo()
	}
	return header + "\n\n" + body
}

func (a App) renderInfo() string {
	c, ok := a.current()
	if id := a.pool.Highlight(); id != "" {
		for _, pc := range a.pool.Cards() {
			if pc.ID == id {
				c, ok = pc, true
				break
			}
		}
	}
	if !ok {
		return StatusBarText.Render("Nothing selected")
	}
	lines := []string{
		CardName.Render(c.Name) + " " + CardMeta.Render(c.ManaCost),
		CardMeta.Render(c.TypeLine),
		"",
		c.OracleText,
		"",
		CardMeta.Render(fmt.Sprintf("%s · %s", c.SetName, c.Rarity)),
	}
	if c.EDHRecRank > 0 {
		lines = append(lines, CardMeta.Render("EDHREC #"+humanize.Comma(int64(c.EDHRecRank))))
	}
	return lipgloss.NewStyle().Width(32).Render(strings.Join(lines, "\n"))
}

func (a App) renderDeck() string {
	entries := a.cfg.Deck.Entries()
	if len(entries) == 0 {
		return StatusBarText.Render("Deck is empty. Press a to keep a card.")
	}
	var lines []string
	for i, e := range entries {
		line := fmt.Sprintf("%2dx %s", e.Quantity, truncate(e.Card.Name, 26))
		if i == a.deckCursor {
			line = SelectedRow.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", StatusBarText.Render(fmt.Sprintf("%d cards · +/- quantity · C clear", a.cfg.Deck.Size())))
	return strings.Join(lines, "\n")
}

func (a App) renderInteractions() string {
	recent := a.cfg.Ledger.Recent()
	if len(recent) == 0 {
		return StatusBarText.Render("No interactions yet")
	}
	var lines []string
	for _, it := range recent {
		mark := DiscardedMark
		if it.Action == ledger.Added {
			mark = AddedMark
		}
		name := it.Name
		if name == "" {
			name = it.CardID
		}
		lines = append(lines, fmt.Sprintf("%s %s", mark, truncate(name, 28)))
	}
	lines = append(lines, "", StatusBarText.Render("C clear all"))
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("%s %d/%d", a.active.Label(), a.pool.Len(), a.pool.Capacity()),
		fmt.Sprintf("deck %d", a.cfg.Deck.Size()),
		fmt.Sprintf("interactions %d", a.cfg.Ledger.Count()),
	}
	if t := a.pool.Total(); t > 0 {
		parts = append(parts, humanize.Comma(int64(t))+" matches")
	}
	if !a.filter.Mana.Empty() {
		parts = append(parts, "mana "+a.filter.Mana.String())
	}
	if a.status != "" {
		parts = append(parts, a.status)
	}
	bar := StatusBar.Render(strings.Join(parts, " │ "))
	if a.width > 0 {
		bar = StatusBar.Width(a.width).Render(strings.Join(parts, " │ "))
	}
	return bar
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
