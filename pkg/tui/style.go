package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// UI styles and layout settings
// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorWhite    = "#ffffff"
	colorGreen    = "#acfab4"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"

	marqueeTickDuration = time.Second / 20
	marqueeGap          = "    "

	bordersAndPaddingWidth = 4
	panelHeightPadding     = 3
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2).Align(lipgloss.Center)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	dangerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorGray)).
				Background(lipgloss.Color(colorRed))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	textRedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue))
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray))
)

// textStatusColorize renders text green for status 1, red for status 2 and
// gray otherwise.
func textStatusColorize(text string, status int) string {
	switch status {
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim)).Render(text)
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim)).Render(text)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)).Render(text)
	}
}

// Generates pointer symbol when line in focus
func linePointer(isPoint bool) string {
	if isPoint {
		return "> "
	}
	return strings.Repeat(" ", 2)
}

// Scrolls text that does not fit into availableWidth
func (m model) marqueeText(text string, availableWidth int) string {
	if len(text) <= availableWidth {
		return text
	}
	padded := text + marqueeGap + text
	offset := m.marqueeOffset % (len(text) + len(marqueeGap))
	if offset+availableWidth <= len(padded) {
		return padded[offset : offset+availableWidth]
	}
	return text
}

func truncate(text string, availableWidth int) string {
	if len(text) > availableWidth && availableWidth > 3 {
		return text[:availableWidth-2] + ".."
	}
	return text
}

func (m model) dynamicColumnWidth() (int, int, int) {
	var leftWidth, middleWidth, rightWidth int
	switch m.columnFocus {
	case focusStreams:
		leftWidth = (m.width * 30) / 100
		middleWidth = (m.width * 35) / 100
	default:
		leftWidth = (m.width * 20) / 100
		middleWidth = (m.width * 35) / 100
	}
	rightWidth = m.width - leftWidth - middleWidth
	return leftWidth, middleWidth, rightWidth
}
