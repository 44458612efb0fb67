package tui

import (
	"path/filepath"
	"time"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/dump/pkg/notes"
)

const (
	focusStreams = iota
	focusEntries
)

// Steps of the new entry form.
const (
	formTitle = iota
	formBody
	formMeta
	formSteps
)

type model struct {
	store      *notes.Store
	dbFilename string

	streams []notes.Stream
	entries []notes.Entry
	total   int
	query   string
	loaded  bool

	columnFocus int
	width       int
	height      int
	err         error
	quitting    bool

	streamCursor           int
	streamRenaming         bool
	streamNameInput        textinput.Model
	streamDeleting         bool
	streamDeleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	entryCursor           int
	entryDeleting         bool
	entryDeleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	filtering  bool
	queryInput textinput.Model

	creating     bool
	creatingStep int
	createError  string
	formInputs   [formSteps]textinput.Model

	// Animation state
	marqueeOffset int
	marqueeTimer  int
}

func initModel(store *notes.Store, dbPath string) model {
	query := textinput.New()
	query.Placeholder = "{Stream} text"
	query.Prompt = "/ "
	query.CharLimit = 512

	name := textinput.New()
	name.Placeholder = "Stream name"
	name.CharLimit = 256

	var form [formSteps]textinput.Model
	for i, placeholder := range []string{"Title", "Body", "Meta, e.g. {Work/ProjectX}"} {
		form[i] = textinput.New()
		form[i].Placeholder = placeholder
		form[i].CharLimit = 4096
	}

	return model{
		store:           store,
		dbFilename:      filepath.Base(dbPath),
		streams:         []notes.Stream{},
		entries:         []notes.Entry{},
		queryInput:      query,
		streamNameInput: name,
		formInputs:      form,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(listStreams(m.store), tick())
}

func (m model) selectedStream() (notes.Stream, bool) {
	if m.streamCursor < 0 || m.streamCursor >= len(m.streams) {
		return notes.Stream{}, false
	}
	return m.streams[m.streamCursor], true
}

func (m model) selectedEntry() (notes.Entry, bool) {
	if m.entryCursor < 0 || m.entryCursor >= len(m.entries) {
		return notes.Entry{}, false
	}
	return m.entries[m.entryCursor], true
}

// reload refreshes streams and the current entry listing.
func (m model) reload() tea.Cmd {
	return tea.Batch(listStreams(m.store), listEntries(m.store, m.query))
}

// selectStream narrows the listing to the stream under the cursor.
func (m model) selectStream() (model, tea.Cmd) {
	stream, ok := m.selectedStream()
	if !ok {
		return m, nil
	}
	m.query = "{" + stream.Name + "}"
	return m, listEntries(m.store, m.query)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case streamsMsg:
		m.streams = msg
		m.streamCursor = clamp(m.streamCursor, len(m.streams))
		if !m.loaded {
			m.loaded = true
			return m, listEntries(m.store, m.query)
		}
		return m, nil

	case entriesMsg:
		if msg.query != m.query {
			// Stale result of a query that has since been edited.
			return m, nil
		}
		m.entries = msg.list.Entries
		m.total = msg.list.Total
		m.entryCursor = clamp(m.entryCursor, len(m.entries))
		if len(m.entries) == 0 && m.columnFocus == focusEntries {
			m.columnFocus = focusStreams
		}
		return m, nil

	case entryCreatedMsg:
		m.entryCursor = 0
		return m, m.reload()

	case entryDeletedMsg:
		return m, m.reload()

	case streamRenamedMsg:
		if m.query == "{"+msg.old.Name+"}" {
			m.query = "{" + msg.renamed.Name + "}"
		}
		return m, m.reload()

	case streamDeletedMsg:
		if m.query == "{"+msg.stream.Name+"}" {
			m.query = ""
		}
		return m, m.reload()

	case tea.KeyMsg:
		switch {
		case m.creating:
			return m.updateCreating(msg)
		case m.filtering:
			return m.updateFiltering(msg)
		case m.streamRenaming:
			return m.updateRenaming(msg)
		case m.streamDeleting:
			return m.updateStreamDeleting(msg)
		case m.entryDeleting:
			return m.updateEntryDeleting(msg)
		}
		return m.updateRoot(msg)

	case time.Time:
		// Update marquee animation every x ticks (adjust for speed)
		m.marqueeTimer++
		if m.marqueeTimer >= 10 {
			m.marqueeTimer = 0
			m.marqueeOffset++
		}
		return m, tick()
	}

	return m, nil
}

func (m model) updateRoot(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		// Exit alt screen before quitting so the goodbye message displays
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.columnFocus == focusStreams && m.streamCursor > 0 {
			m.streamCursor--
			m.entryCursor = 0
			return m.selectStream()
		}
		if m.columnFocus == focusEntries && m.entryCursor > 0 {
			m.entryCursor--
		}

	case "down", "j":
		if m.columnFocus == focusStreams && m.streamCursor < len(m.streams)-1 {
			m.streamCursor++
			m.entryCursor = 0
			return m.selectStream()
		}
		if m.columnFocus == focusEntries && m.entryCursor < len(m.entries)-1 {
			m.entryCursor++
		}

	case "enter":
		if m.columnFocus == focusStreams {
			m.entryCursor = 0
			return m.selectStream()
		}

	case "right", "l":
		if m.columnFocus == focusStreams && len(m.entries) > 0 {
			m.columnFocus = focusEntries
		}

	case "left", "h":
		m.columnFocus = focusStreams

	case "/":
		m.filtering = true
		m.queryInput.SetValue(m.query)
		m.queryInput.CursorEnd()
		return m, m.queryInput.Focus()

	case "a":
		m.query = ""
		m.entryCursor = 0
		return m, listEntries(m.store, m.query)

	case "n":
		m.creating = true
		m.creatingStep = formTitle
		m.createError = ""
		for i := range m.formInputs {
			m.formInputs[i].Reset()
			m.formInputs[i].Blur()
		}
		if stream, ok := m.selectedStream(); ok && m.query == "{"+stream.Name+"}" {
			m.formInputs[formMeta].SetValue(m.query)
		}
		return m, m.formInputs[formTitle].Focus()

	case "r":
		if stream, ok := m.selectedStream(); ok && m.columnFocus == focusStreams {
			m.streamRenaming = true
			m.streamNameInput.SetValue(stream.Name)
			m.streamNameInput.CursorEnd()
			return m, m.streamNameInput.Focus()
		}

	case "d":
		if m.columnFocus == focusStreams && len(m.streams) > 0 {
			m.streamDeleteConfirmIdx = 1
			m.streamDeleting = true
		} else if m.columnFocus == focusEntries && len(m.entries) > 0 {
			m.entryDeleteConfirmIdx = 1
			m.entryDeleting = true
		}
	}
	return m, nil
}

// updateFiltering edits the query live: every change reloads the listing.
func (m model) updateFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.filtering = false
		m.queryInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	if value := m.queryInput.Value(); value != m.query {
		m.query = value
		m.entryCursor = 0
		return m, tea.Batch(cmd, listEntries(m.store, m.query))
	}
	return m, cmd
}

func (m model) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.creating = false
		m.formInputs[m.creatingStep].Blur()
		return m, nil

	case tea.KeyEnter:
		if m.creatingStep == formTitle && m.formInputs[formTitle].Value() == "" {
			m.createError = "Entry title cannot be empty"
			return m, nil
		}
		m.createError = ""
		m.formInputs[m.creatingStep].Blur()
		if m.creatingStep < formMeta {
			m.creatingStep++
			return m, m.formInputs[m.creatingStep].Focus()
		}
		m.creating = false
		return m, createEntry(m.store,
			m.formInputs[formTitle].Value(),
			m.formInputs[formBody].Value(),
			m.formInputs[formMeta].Value())
	}

	var cmd tea.Cmd
	m.formInputs[m.creatingStep], cmd = m.formInputs[m.creatingStep].Update(msg)
	return m, cmd
}

func (m model) updateRenaming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.streamRenaming = false
		m.streamNameInput.Blur()
		return m, nil

	case tea.KeyEnter:
		stream, ok := m.selectedStream()
		name := m.streamNameInput.Value()
		m.streamRenaming = false
		m.streamNameInput.Blur()
		if !ok || name == "" || name == stream.Name {
			return m, nil
		}
		return m, renameStream(m.store, stream, name)
	}

	var cmd tea.Cmd
	m.streamNameInput, cmd = m.streamNameInput.Update(msg)
	return m, cmd
}

func (m model) updateStreamDeleting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.streamDeleteConfirmIdx = 0
	case "down", "j":
		m.streamDeleteConfirmIdx = 1
	case "enter":
		m.streamDeleting = false
		if stream, ok := m.selectedStream(); ok && m.streamDeleteConfirmIdx == 0 {
			return m, deleteStream(m.store, stream)
		}
	case "esc":
		m.streamDeleting = false
	}
	return m, nil
}

func (m model) updateEntryDeleting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.entryDeleteConfirmIdx = 0
	case "down", "j":
		m.entryDeleteConfirmIdx = 1
	case "enter":
		m.entryDeleting = false
		if entry, ok := m.selectedEntry(); ok && m.entryDeleteConfirmIdx == 0 {
			return m, deleteEntry(m.store, entry.ID)
		}
	case "esc":
		m.entryDeleting = false
	}
	return m, nil
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(cursor, 0)
}

// ShowTUI runs the terminal browser until the user quits.
func ShowTUI(store *notes.Store, dbPath string) error {
	p := tea.NewProgram(initModel(store, dbPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
