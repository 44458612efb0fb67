package notes

import (
	"context"
	"strings"
)

// parsedQuery is a listing query split into its tag names and free text.
type parsedQuery struct {
	names []string
	text  string
}

func (s *Store) parseQuery(query string) parsedQuery {
	if pq, ok := s.queries.Get(query); ok {
		return pq
	}
	pq := parsedQuery{
		names: ExtractNames(query),
		text:  strings.ToLower(StripQueryTags(query)),
	}
	s.queries.Add(query, pq)
	return pq
}

// ListEntries returns entries newest first that satisfy every {Name} in the
// query, counting an entry as tagged with a stream when it carries the stream
// or one of its descendants, and whose title or body contains the remaining
// text, ignoring case. Names no stream carries are dropped from the filters.
func (s *Store) ListEntries(ctx context.Context, opts ListOptions) (EntryList, error) {
	offset := max(opts.Offset, 0)
	result := EntryList{Offset: offset, Entries: []Entry{}}

	pq := s.parseQuery(opts.Query)
	set, err := s.loadStreams(ctx)
	if err != nil {
		return result, err
	}

	filters := make([]Stream, 0, len(pq.names))
	for _, name := range pq.names {
		stream, ok := set.byName(name)
		if !ok {
			s.logger.Debug("query names unknown stream", "query", opts.Query, "name", name)
			continue
		}
		filters = append(filters, stream)
	}

	items, err := s.entries.Items(ctx, true)
	if err != nil {
		return result, err
	}

	var matched []Entry
	for _, item := range items {
		entry, err := decodeRecord[Entry](item.Value)
		if err != nil {
			s.logger.Warn("skipping unreadable entry", "key", item.Key, "error", err)
			continue
		}
		if !matchesStreams(set, entry, filters) || !matchesText(entry, pq.text) {
			continue
		}
		matched = append(matched, entry)
	}

	result.Total = len(matched)
	if offset < len(matched) {
		page := matched[offset:]
		if opts.Limit != nil {
			page = page[:min(max(*opts.Limit, 0), len(page))]
		}
		for _, entry := range page {
			entry.Meta = set.decode(entry.Meta)
			result.Entries = append(result.Entries, entry)
		}
	}

	s.logger.Debug("entries listed",
		"query", opts.Query,
		"offset", offset,
		"limit", limitAttr(opts.Limit),
		"total", result.Total)
	return result, nil
}

func limitAttr(limit *int) any {
	if limit == nil {
		return "none"
	}
	return *limit
}

func matchesStreams(set streamSet, entry Entry, filters []Stream) bool {
	if len(filters) == 0 {
		return true
	}
	tagged := set.closure(entry.Meta, true)
	for _, filter := range filters {
		if !containsStream(tagged, filter.ID) {
			return false
		}
	}
	return true
}

// matchesText expects needle already lowercased.
func matchesText(entry Entry, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(entry.Title), needle) ||
		strings.Contains(strings.ToLower(entry.Body), needle)
}
