package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
)

// Mana symbol colors, indexed by symbol.
var manaColors = map[string]lipgloss.Color{
	"W": lipgloss.Color("230"),
	"U": lipgloss.Color("39"),
	"B": lipgloss.Color("245"),
	"R": lipgloss.Color("203"),
	"G": lipgloss.Color("78"),
}

// CardTile is the frame of an unselected pool card.
var CardTile = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1).
	Width(24).
	Height(7)

// CursorTile frames the card under the cursor.
var CursorTile = CardTile.
	BorderForeground(colorPrimary)

// HighlightTile frames the highlighted card.
var HighlightTile = CardTile.
	BorderForeground(colorHighlight).
	BorderStyle(lipgloss.ThickBorder())

// CardName style for the card title line.
var CardName = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// CardMeta style for type line and mana cost.
var CardMeta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Sidebar frames the right-hand panel.
var Sidebar = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(colorMuted).
	Padding(0, 1).
	Width(34)

// SidebarTitle style for the active sidebar tab.
var SidebarTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// SidebarTab style for inactive sidebar tabs.
var SidebarTab = lipgloss.NewStyle().
	Foreground(colorMuted)

// SelectedRow style for the deck cursor row.
var SelectedRow = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// AddedMark and DiscardedMark prefix interaction rows.
var (
	AddedMark     = lipgloss.NewStyle().Foreground(colorSuccess).Render("+")
	DiscardedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("-")
)

// Button styles for the strategy bar.
var (
	ButtonEnabled = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			MarginRight(1)

	ButtonActive = ButtonEnabled.
			Background(colorPrimary).
			Bold(true)

	ButtonDisabled = ButtonEnabled.
			Foreground(colorMuted).
			Background(lipgloss.Color("234"))
)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// FilterBarPrompt style for the "/" prompt.
var FilterBarPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// HelpStyle for the key help line.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(0, 1)

func manaSymbol(sym string, on bool) string {
	style := lipgloss.NewStyle().Padding(0, 1)
	if on {
		style = style.Bold(true).Foreground(lipgloss.Color("0")).Background(manaColors[sym])
	} else {
		style = style.Foreground(colorMuted)
	}
	return style.Render(sym)
}
