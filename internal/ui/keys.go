package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right   key.Binding
	Highlight     key.Binding
	Keep, Discard key.Binding
	Random        key.Binding
	DeckSim       key.Binding
	History       key.Binding
	Search        key.Binding
	ClearSearch   key.Binding
	Mana          key.Binding
	Sidebar       key.Binding
	DeckUp        key.Binding
	DeckDown      key.Binding
	Inc, Dec      key.Binding
	Clear         key.Binding
	Quit          key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Highlight:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "highlight")),
		Keep:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "keep")),
		Discard:     key.NewBinding(key.WithKeys("x", "d"), key.WithHelp("x", "discard")),
		Random:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "random")),
		DeckSim:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "deck")),
		History:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "history")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearSearch: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Mana:        key.NewBinding(key.WithKeys("w", "u", "b", "r", "g"), key.WithHelp("wubrg", "mana")),
		Sidebar:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "sidebar")),
		DeckUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		DeckDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Inc:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
		Dec:         key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer")),
		Clear:       key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Keep, k.Discard, k.Random, k.DeckSim, k.History, k.Search, k.Mana, k.Sidebar, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Highlight, k.Keep, k.Discard},
		{k.Random, k.DeckSim, k.History, k.Search, k.ClearSearch, k.Mana},
		{k.Sidebar, k.DeckUp, k.DeckDown, k.Inc, k.Dec, k.Clear, k.Quit},
	}
}
