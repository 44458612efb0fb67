package notes

import (
	"context"
	"errors"
	"strings"
)

// Encode replaces every {Name} in text with the token of the earliest stream
// of that name, creating missing streams on the way.
func (s *Store) Encode(ctx context.Context, text string) (string, error) {
	names := ExtractNames(text)
	if len(names) == 0 {
		return text, nil
	}

	set, err := s.loadStreams(ctx)
	if err != nil {
		return "", err
	}
	resolved := make(map[string]Stream, len(names))
	for _, name := range names {
		if _, ok := resolved[name]; ok {
			continue
		}
		stream, ok := set.byName(name)
		if !ok {
			if stream, err = s.createStream(ctx, name); err != nil {
				return "", err
			}
			set = append(set, stream)
		}
		resolved[name] = stream
	}

	return namePattern.ReplaceAllStringFunc(text, func(span string) string {
		return Token(resolved[span[1:len(span)-1]].ID)
	}), nil
}

// Decode turns tokens of known streams back into {Name}. Tokens of missing
// streams are left as they are.
func (s *Store) Decode(ctx context.Context, text string) (string, error) {
	if !strings.Contains(text, tokenPrefix) {
		return text, nil
	}
	set, err := s.loadStreams(ctx)
	if err != nil {
		return "", err
	}
	return set.decode(text), nil
}

// Closure returns the streams referenced by tokens in meta, plus their
// ancestors by name when ancestors is set.
func (s *Store) Closure(ctx context.Context, meta string, ancestors bool) ([]Stream, error) {
	set, err := s.loadStreams(ctx)
	if err != nil {
		return nil, err
	}
	return set.closure(meta, ancestors), nil
}

// CreateEntry stores a new entry stamped with the current time and returns it
// with its meta decoded.
func (s *Store) CreateEntry(ctx context.Context, title, body, meta string) (Entry, error) {
	now := s.now()
	id, err := s.generateID(now)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{ID: id, Created: now.Unix(), Title: title, Body: body, Meta: meta}
	if entry, err = s.writeEntry(ctx, entry); err != nil {
		return Entry{}, err
	}
	s.logger.Debug("entry created", "id", entry.ID, "meta", entry.Meta)
	return entry, nil
}

// GetEntry returns ErrEntryNotFound when no entry has the given id.
func (s *Store) GetEntry(ctx context.Context, id string) (Entry, error) {
	raw, ok, err := s.entries.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	entry, err := decodeRecord[Entry](raw)
	if err != nil {
		return Entry{}, err
	}
	if entry.Meta, err = s.Decode(ctx, entry.Meta); err != nil {
		return Entry{}, err
	}
	s.logger.Debug("entry read", "id", entry.ID)
	return entry, nil
}

// InsertEntry encodes the entry's meta and writes it under its id, replacing
// any previous record. Id and creation time are taken as given.
func (s *Store) InsertEntry(ctx context.Context, entry Entry) error {
	_, err := s.storeEntry(ctx, entry)
	return err
}

// storeEntry writes entry with its meta encoded and returns the encoded meta.
func (s *Store) storeEntry(ctx context.Context, entry Entry) (string, error) {
	meta, err := s.Encode(ctx, entry.Meta)
	if err != nil {
		return "", err
	}
	entry.Meta = meta
	if err := insertJSON(ctx, s.entries, entry.ID, entry); err != nil {
		return "", err
	}
	return meta, nil
}

// UpdateEntry replaces the title, body and meta of an entry, keeping its id
// and creation time. When the id is unknown a new entry is created instead,
// with a fresh id.
func (s *Store) UpdateEntry(ctx context.Context, id, title, body, meta string) (Entry, error) {
	entry, err := s.GetEntry(ctx, id)
	if errors.Is(err, ErrEntryNotFound) {
		s.logger.Debug("entry missing, creating", "id", id)
		return s.CreateEntry(ctx, title, body, meta)
	}
	if err != nil {
		return Entry{}, err
	}

	entry.Title, entry.Body, entry.Meta = title, body, meta
	if entry, err = s.writeEntry(ctx, entry); err != nil {
		return Entry{}, err
	}
	s.logger.Debug("entry updated", "id", entry.ID, "meta", entry.Meta)
	return entry, nil
}

// DeleteEntry removes an entry. Unknown ids are a no-op.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := s.entries.Remove(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("entry deleted", "id", id)
	return nil
}

// writeEntry stores entry and returns it with meta in display form.
func (s *Store) writeEntry(ctx context.Context, entry Entry) (Entry, error) {
	meta, err := s.storeEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	if entry.Meta, err = s.Decode(ctx, meta); err != nil {
		return Entry{}, err
	}
	return entry, nil
}
