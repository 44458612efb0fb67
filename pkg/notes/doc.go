// Package notes is the tag-indexed storage layer of dump.
//
// Entries carry free-text metadata in which streams (hierarchical, renameable
// tags) are referenced as {Name}. On the way in every reference is replaced by
// a canonical token holding the stream id, _stream_id_[<id>]__, so renaming a
// stream never rewrites entries. On the way out tokens are turned back into
// {Name}. Listing combines tag filters (with ancestor expansion over the
// "/"-separated stream names) and a case-insensitive substring match on the
// title and body.
//
// All operations scan the underlying trees; there is no secondary index.
package notes
