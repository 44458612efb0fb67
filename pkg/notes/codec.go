package notes

import (
	"regexp"
	"slices"
	"strings"
)

var (
	namePattern        = regexp.MustCompile(`\{[^{}]+\}`)
	tokenPattern       = regexp.MustCompile(`_stream_id_\[[^{\[\]}]+\]__`)
	partialNamePattern = regexp.MustCompile(`\{[^{}]*$`)
)

const (
	tokenPrefix = "_stream_id_["
	tokenSuffix = "]__"
)

// Token returns the canonical in-text form of a stream reference.
func Token(id string) string {
	return tokenPrefix + id + tokenSuffix
}

// ExtractNames returns the inner text of every {Name} span in order of
// appearance, duplicates included. Spans never contain braces.
func ExtractNames(text string) []string {
	spans := namePattern.FindAllString(text, -1)
	names := make([]string, 0, len(spans))
	for _, span := range spans {
		names = append(names, span[1:len(span)-1])
	}
	return names
}

// ExtractIDs returns the id inside every canonical token in order of appearance.
func ExtractIDs(text string) []string {
	tokens := tokenPattern.FindAllString(text, -1)
	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		ids = append(ids, token[len(tokenPrefix):len(token)-len(tokenSuffix)])
	}
	return ids
}

// StripQueryTags removes complete {Name} spans and a trailing unterminated
// "{..." from a query, then trims surrounding whitespace.
func StripQueryTags(query string) string {
	query = namePattern.ReplaceAllString(query, "")
	query = partialNamePattern.ReplaceAllString(query, "")
	return strings.TrimSpace(query)
}

// removeToken strips one stream's token from text. The spaces on either side
// of each removed token collapse to one; spacing elsewhere is kept.
func removeToken(text, id string) string {
	parts := strings.Split(text, Token(id))
	out := parts[0]
	for _, next := range parts[1:] {
		left := strings.TrimRight(out, " ")
		right := strings.TrimLeft(next, " ")
		sep := ""
		if len(left) < len(out) || len(right) < len(next) {
			sep = " "
		}
		out = left + sep + right
	}
	return strings.TrimSpace(out)
}

// streamSet is a snapshot of the registry in insertion order.
type streamSet []Stream

// byName returns the earliest inserted stream with the given name.
func (set streamSet) byName(name string) (Stream, bool) {
	for _, s := range set {
		if s.Name == name {
			return s, true
		}
	}
	return Stream{}, false
}

func (set streamSet) byID(id string) (Stream, bool) {
	for _, s := range set {
		if s.ID == id {
			return s, true
		}
	}
	return Stream{}, false
}

// decode replaces tokens of known streams with {Name}; unknown tokens stay.
func (set streamSet) decode(text string) string {
	if !strings.Contains(text, tokenPrefix) {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(token string) string {
		id := token[len(tokenPrefix) : len(token)-len(tokenSuffix)]
		if s, ok := set.byID(id); ok {
			return "{" + s.Name + "}"
		}
		return token
	})
}

// closure returns the streams directly referenced by tokens in text and, when
// ancestors is set, every stream whose name is a leading path of one of them.
// The result holds each stream once.
func (set streamSet) closure(text string, ancestors bool) []Stream {
	ids := ExtractIDs(text)
	if len(ids) == 0 {
		return nil
	}

	var direct []Stream
	for _, s := range set {
		if slices.Contains(ids, s.ID) {
			direct = append(direct, s)
		}
	}
	if !ancestors || len(direct) == 0 {
		return direct
	}

	parents := make(map[string]struct{})
	for _, s := range direct {
		for _, name := range s.ParentNames() {
			parents[name] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(direct))
	out := make([]Stream, 0, len(direct))
	add := func(s Stream) {
		if _, ok := seen[s.ID]; ok {
			return
		}
		seen[s.ID] = struct{}{}
		out = append(out, s)
	}
	for _, s := range direct {
		add(s)
	}
	for _, s := range set {
		if _, ok := parents[s.Name]; ok {
			add(s)
		}
	}
	return out
}

func containsStream(streams []Stream, id string) bool {
	return slices.ContainsFunc(streams, func(s Stream) bool { return s.ID == id })
}
