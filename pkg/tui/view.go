package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Dumped. See you later.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	titleBar := titleStyle.Width(m.width).Render("Dump - tagged notes")
	leftWidth, middleWidth, rightWidth := m.dynamicColumnWidth()
	quarterHeight := (m.height - bordersAndPaddingWidth) / 4

	streamsPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, true, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).
		Width(leftWidth).Height(quarterHeight * 3).
		Render(m.streamsView(leftWidth))
	infoPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(1, 2).
		Width(leftWidth).Height(quarterHeight).
		Render(m.infoView())
	leftPanel := lipgloss.JoinVertical(lipgloss.Left, streamsPanel, infoPanel)

	middlePanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).
		Width(middleWidth).Height(m.height - panelHeightPadding).
		Render(m.entriesView(middleWidth))

	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(m.height - panelHeightPadding).
		Render(m.detailView(rightWidth))

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, middlePanel, rightPanel)

	footerText := "\n↑/↓ navigate • ←/→ switch column • / filter • a all • n new • r rename • d delete • q quit"
	footerBar := footerStyle.Width(m.width).Render(footerText)

	return titleBar + "\n\n" + columns + footerBar
}

func (m model) streamsView(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Width(width - bordersAndPaddingWidth).Render("  Streams"))
	b.WriteString("\n\n")

	if len(m.streams) == 0 {
		b.WriteString("No streams yet.\n")
		return b.String()
	}

	for i, stream := range m.streams {
		selected := i == m.streamCursor
		availableWidth := width - 2 - bordersAndPaddingWidth - 1
		itemStyle := inactiveStyle
		name := truncate(stream.Name, availableWidth)
		if selected {
			itemStyle = selectedStyle
			name = m.marqueeText(stream.Name, availableWidth)
		}
		name = lipgloss.NewStyle().MaxWidth(availableWidth).Render(name)
		b.WriteString(linePointer(selected && m.columnFocus == focusStreams) + itemStyle.Render(name) + "\n")
	}
	return b.String()
}

func (m model) infoView() string {
	databaseStatus := 2
	if m.dbFilename != "" {
		databaseStatus = 1
	}
	query := m.query
	if query == "" {
		query = "-"
	}
	return fmt.Sprintf("Database file: %v\nQuery: %v\nMatches: %v\n",
		textStatusColorize(m.dbFilename, databaseStatus),
		metaStyle.Render(query),
		textStatusColorize(strconv.Itoa(m.total), 1))
}

func (m model) entriesView(width int) string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Width(width - bordersAndPaddingWidth).Render("  Entries"))
	b.WriteString("\n")
	if m.filtering {
		m.queryInput.Width = width - bordersAndPaddingWidth - 2
		b.WriteString(m.queryInput.View())
	}
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString("  No entries.\n")
		return b.String()
	}

	availableWidth := width - 2 - bordersAndPaddingWidth - 1
	for i, entry := range m.entries {
		selected := i == m.entryCursor && m.columnFocus == focusEntries
		itemStyle := inactiveStyle
		if selected {
			itemStyle = selectedStyle
		}
		title := lipgloss.NewStyle().MaxWidth(availableWidth).Render(truncate(entry.Title, availableWidth))
		b.WriteString(linePointer(selected) + itemStyle.Render(title) + "\n")
	}
	return b.String()
}

func (m model) detailView(width int) string {
	var b strings.Builder
	inputWidth := width - bordersAndPaddingWidth

	switch {
	case m.creating:
		b.WriteString(subtitleStyle.Render("New Entry") + "\n\n")
		for i, label := range []string{"Title: ", "Body: ", "Meta: "} {
			input := m.formInputs[i]
			input.Width = inputWidth - len(label)
			b.WriteString(label + input.View() + "\n")
		}
		b.WriteString("\n(enter for next field, esc to cancel)")
		if m.createError != "" {
			b.WriteString("\n\n" + textRedStyle.Render(m.createError) + "\n")
		}

	case m.streamRenaming:
		b.WriteString(subtitleStyle.Render("Rename Stream") + "\n\n")
		m.streamNameInput.Width = inputWidth - len("Name: ")
		b.WriteString("Name: " + m.streamNameInput.View() + "\n\n")
		b.WriteString("(enter to save, esc to cancel)")

	case m.streamDeleting:
		stream, _ := m.selectedStream()
		b.WriteString(subtitleStyle.Render("Delete Stream") + "\n\n")
		b.WriteString("Name: " + textRedStyle.Render(stream.Name) + "\n")
		b.WriteString("Entries tagged with it directly lose the tag.\n\n")
		b.WriteString(confirmOptions(m.streamDeleteConfirmIdx))

	case m.entryDeleting:
		entry, _ := m.selectedEntry()
		b.WriteString(subtitleStyle.Render("Delete Entry") + "\n\n")
		b.WriteString("Title: " + textRedStyle.Render(entry.Title) + "\n\n")
		b.WriteString(confirmOptions(m.entryDeleteConfirmIdx))

	default:
		b.WriteString(subtitleStyle.Render("Entry") + "\n\n")
		entry, ok := m.selectedEntry()
		if !ok {
			b.WriteString("Select an entry to view details.")
			break
		}
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(labelStyle.Render("Title: ")+inactiveStyle.Render(entry.Title)) + "\n\n")
		created := time.Unix(entry.Created, 0).Format(time.RFC3339)
		b.WriteString(labelStyle.Render("Created: ") + inactiveStyle.Render(created) + "\n")
		meta := entry.Meta
		if meta == "" {
			meta = "-"
		}
		b.WriteString(labelStyle.Render("Meta: ") + metaStyle.Render(meta) + "\n\n")
		b.WriteString(inactiveStyle.Render(entry.Body))
	}
	return b.String()
}

func confirmOptions(confirmIdx int) string {
	yesOpt, noOpt := "Yes", "No"
	if confirmIdx == 0 {
		yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
		noOpt = inactiveStyle.Render("  " + noOpt)
	} else {
		yesOpt = inactiveStyle.Render("  " + yesOpt)
		noOpt = selectedStyle.Render(" >" + noOpt)
	}
	return fmt.Sprintf("%s\n%s\n\n(enter to confirm, esc to cancel, up/down to switch)", yesOpt, noOpt)
}
