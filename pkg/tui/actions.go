package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unowned-ai/dump/pkg/notes"
)

type streamsMsg []notes.Stream

type entriesMsg struct {
	query string
	list  notes.EntryList
}

type entryCreatedMsg notes.Entry

type entryDeletedMsg struct{ id string }

type streamRenamedMsg struct {
	old     notes.Stream
	renamed notes.Stream
}

type streamDeletedMsg struct{ stream notes.Stream }

func listStreams(store *notes.Store) tea.Cmd {
	return func() tea.Msg {
		streams, err := store.ListStreams(context.Background())
		if err != nil {
			return err
		}
		return streamsMsg(streams)
	}
}

func listEntries(store *notes.Store, query string) tea.Cmd {
	return func() tea.Msg {
		list, err := store.ListEntries(context.Background(), notes.ListOptions{Query: query})
		if err != nil {
			return err
		}
		return entriesMsg{query: query, list: list}
	}
}

func createEntry(store *notes.Store, title, body, meta string) tea.Cmd {
	return func() tea.Msg {
		entry, err := store.CreateEntry(context.Background(), title, body, meta)
		if err != nil {
			return err
		}
		return entryCreatedMsg(entry)
	}
}

func deleteEntry(store *notes.Store, id string) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteEntry(context.Background(), id); err != nil {
			return err
		}
		return entryDeletedMsg{id: id}
	}
}

func renameStream(store *notes.Store, stream notes.Stream, name string) tea.Cmd {
	return func() tea.Msg {
		renamed, err := store.UpdateStream(context.Background(), stream.ID, name)
		if err != nil {
			return err
		}
		return streamRenamedMsg{old: stream, renamed: renamed}
	}
}

func deleteStream(store *notes.Store, stream notes.Stream) tea.Cmd {
	return func() tea.Msg {
		if err := store.DeleteStream(context.Background(), stream.ID); err != nil {
			return err
		}
		return streamDeletedMsg{stream: stream}
	}
}

func tick() tea.Cmd {
	return tea.Tick(marqueeTickDuration, func(t time.Time) tea.Msg {
		return t
	})
}
