package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/unowned-ai/dump/pkg/notes"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StreamList is the body of GET /streams.
type StreamList struct {
	Total   int            `json:"total"`
	Streams []notes.Stream `json:"streams"`
}

// entryRequest carries the writable fields of an entry. Any id or creation
// time in the body is ignored.
type entryRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Meta  string `json:"meta"`
}

type streamRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	list, err := s.store.ListEntries(r.Context(), opts)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	entry, err := s.store.CreateEntry(r.Context(), req.Title, req.Body, req.Meta)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.GetEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	entry, err := s.store.UpdateEntry(r.Context(), r.PathValue("id"), req.Title, req.Body, req.Meta)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteEntry(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	streams, err := s.store.ListStreams(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StreamList{Total: len(streams), Streams: streams})
}

func (s *Server) handleUpdateStream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	stream, err := s.store.UpdateStream(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stream)
}

func (s *Server) handleDeleteStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteStream(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// parseListOptions reads query, offset and limit. A missing limit means no limit.
func parseListOptions(r *http.Request) (notes.ListOptions, error) {
	q := r.URL.Query()
	opts := notes.ListOptions{Query: q.Get("query")}

	var err error
	if opts.Offset, err = parseCount(q.Get("offset"), "offset"); err != nil {
		return opts, err
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := parseCount(raw, "limit")
		if err != nil {
			return opts, err
		}
		opts.Limit = notes.LimitOf(limit)
	}
	return opts, nil
}

func parseCount(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, raw)
	}
	return n, nil
}

// decodeBody reads a size-limited JSON body into v, writing the error reply
// itself when that fails.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength > s.maxBodyBytes {
		s.writeError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge(s.maxBodyBytes))
		return false
	}
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge(s.maxBodyBytes))
			return false
		}
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func errBodyTooLarge(limit int64) error {
	return fmt.Errorf("request body exceeds maximum size of %d bytes", limit)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notes.ErrEntryNotFound), errors.Is(err, notes.ErrStreamNotFound):
		s.writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error("store operation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
