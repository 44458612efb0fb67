// Package kv provides ordered key-value namespaces ("trees") on top of SQLite.
//
// Each namespace is a table created by the dumpdb schema with an insertion
// sequence, a unique text key and an opaque value. Iteration follows the
// insertion sequence; overwriting an existing key keeps its position, so a
// record that is rewritten in place does not move to the end of the tree.
package kv
