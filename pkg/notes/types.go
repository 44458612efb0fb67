package notes

import (
	"slices"
	"strings"
)

const (
	// InboxID is the fixed id of the sentinel Inbox stream.
	InboxID = "0-inbox"
	// InboxName is the fixed name of the sentinel Inbox stream.
	InboxName = "Inbox"

	streamSeparator = "/"
)

// Entry is a single note. Meta may reference streams as {Name}.
type Entry struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Meta    string `json:"meta"`
}

// Stream is a hierarchical tag. Meta is reserved and always empty.
type Stream struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Meta string `json:"meta"`
}

// IsInbox reports whether s is the sentinel Inbox stream.
func (s Stream) IsInbox() bool {
	return s.ID == InboxID
}

// ParentNames returns every leading path of the stream name, the name itself
// included: "Foo/Bar/Acme" gives ["Foo", "Foo/Bar", "Foo/Bar/Acme"]. A leading
// separator yields an empty first prefix.
func (s Stream) ParentNames() []string {
	parts := strings.Split(s.Name, streamSeparator)
	names := make([]string, 0, len(parts))
	for i := range parts {
		names = append(names, strings.Join(parts[:i+1], streamSeparator))
	}
	return names
}

// SortStreams orders streams for display: Inbox first, then by name (byte-wise,
// case-sensitive). Streams sharing a name keep their relative order.
func SortStreams(streams []Stream) {
	slices.SortStableFunc(streams, compareStreams)
}

func compareStreams(a, b Stream) int {
	switch {
	case a.IsInbox() && !b.IsInbox():
		return -1
	case b.IsInbox() && !a.IsInbox():
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

func inboxStream() Stream {
	return Stream{ID: InboxID, Name: InboxName}
}

// ListOptions selects a page of entries.
type ListOptions struct {
	// Query holds optional {Name} filters and a free-text term.
	Query string
	// Offset skips that many matching entries. Negative values count as zero.
	Offset int
	// Limit caps the page size. Nil means no limit; zero yields an empty page.
	Limit *int
}

// LimitOf returns n as a ListOptions.Limit.
func LimitOf(n int) *int {
	return &n
}

// EntryList is one page of a listing. Total counts every match, not just the page.
type EntryList struct {
	Total   int     `json:"total"`
	Offset  int     `json:"offset"`
	Entries []Entry `json:"entries"`
}

// CheckReport summarises a consistency pass over the store.
type CheckReport struct {
	Entries        int `json:"entries"`
	Streams        int `json:"streams"`
	DroppedEntries int `json:"dropped_entries"`
	DroppedStreams int `json:"dropped_streams"`
}
