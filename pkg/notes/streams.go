package notes

import (
	"context"
	"errors"
)

// StreamByName returns the earliest inserted stream called name. When none
// exists and create is set, a new stream is inserted and returned. The bool
// reports whether a stream was found or created.
func (s *Store) StreamByName(ctx context.Context, name string, create bool) (Stream, bool, error) {
	set, err := s.loadStreams(ctx)
	if err != nil {
		return Stream{}, false, err
	}
	if stream, ok := set.byName(name); ok {
		return stream, true, nil
	}
	if !create {
		return Stream{}, false, nil
	}
	stream, err := s.createStream(ctx, name)
	if err != nil {
		return Stream{}, false, err
	}
	return stream, true, nil
}

func (s *Store) createStream(ctx context.Context, name string) (Stream, error) {
	id, err := s.generateID(s.now())
	if err != nil {
		return Stream{}, err
	}
	stream := Stream{ID: id, Name: name}
	if err := s.InsertStream(ctx, stream); err != nil {
		return Stream{}, err
	}
	s.logger.Debug("stream created", "id", stream.ID, "name", stream.Name)
	return stream, nil
}

// StreamByID returns ErrStreamNotFound when no stream has the given id.
func (s *Store) StreamByID(ctx context.Context, id string) (Stream, error) {
	raw, ok, err := s.streams.Get(ctx, id)
	if err != nil {
		return Stream{}, err
	}
	if !ok {
		return Stream{}, ErrStreamNotFound
	}
	return decodeRecord[Stream](raw)
}

// InsertStream writes a stream under its id, replacing any previous record.
func (s *Store) InsertStream(ctx context.Context, stream Stream) error {
	return insertJSON(ctx, s.streams, stream.ID, stream)
}

// ListStreams returns every stream, Inbox first and the rest by name.
func (s *Store) ListStreams(ctx context.Context) ([]Stream, error) {
	set, err := s.loadStreams(ctx)
	if err != nil {
		return nil, err
	}
	streams := []Stream(set)
	SortStreams(streams)
	s.logger.Debug("streams listed", "total", len(streams))
	return streams, nil
}

// UpdateStream renames a stream. Entries keep their tokens, so they show the
// new name from then on. An unknown id is not an error: the requested stream
// is echoed back and nothing is written.
func (s *Store) UpdateStream(ctx context.Context, id, name string) (Stream, error) {
	stream, err := s.StreamByID(ctx, id)
	if errors.Is(err, ErrStreamNotFound) {
		s.logger.Debug("stream update skipped", "id", id)
		return Stream{ID: id, Name: name}, nil
	}
	if err != nil {
		return Stream{}, err
	}

	stream.Name = name
	if err := s.InsertStream(ctx, stream); err != nil {
		return Stream{}, err
	}
	s.logger.Debug("stream updated", "id", stream.ID, "name", stream.Name)
	return stream, nil
}

// DeleteStream removes a stream and its token from every entry that
// references it directly. Entries that only match through a descendant are
// left alone. Deleting an unknown id is a no-op.
func (s *Store) DeleteStream(ctx context.Context, id string) error {
	if _, err := s.StreamByID(ctx, id); errors.Is(err, ErrStreamNotFound) {
		s.logger.Debug("stream delete skipped", "id", id)
		return nil
	} else if err != nil {
		return err
	}

	set, err := s.loadStreams(ctx)
	if err != nil {
		return err
	}
	items, err := s.entries.Items(ctx, true)
	if err != nil {
		return err
	}

	var rewrites []Entry
	for _, item := range items {
		entry, err := decodeRecord[Entry](item.Value)
		if err != nil {
			s.logger.Warn("skipping unreadable entry", "key", item.Key, "error", err)
			continue
		}
		if !containsStream(set.closure(entry.Meta, false), id) {
			continue
		}
		entry.Meta = set.decode(removeToken(entry.Meta, id))
		rewrites = append(rewrites, entry)
	}

	for _, entry := range rewrites {
		if err := s.InsertEntry(ctx, entry); err != nil {
			return err
		}
	}
	if err := s.streams.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("stream deleted", "id", id, "entries_updated", len(rewrites))
	return nil
}
