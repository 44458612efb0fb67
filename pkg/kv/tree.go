package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

var namespacePattern = regexp.MustCompile(`^[a-z][a-z_]*$`)

// Error reports a failed key-value operation.
type Error struct {
	Op        string
	Namespace string
	Key       string
	Err       error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("kv %s %s: %v", e.Op, e.Namespace, e.Err)
	}
	return fmt.Sprintf("kv %s %s/%s: %v", e.Op, e.Namespace, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Item is a single key/value pair read from a tree.
type Item struct {
	Key   string
	Value []byte
}

// Tree is one namespace of the store.
type Tree struct {
	db        *sql.DB
	namespace string

	getStatement     string
	insertStatement  string
	removeStatement  string
	scanStatement    string
	reverseStatement string
	countStatement   string
}

// Open binds a tree to the table named namespace. The table must exist.
func Open(db *sql.DB, namespace string) (*Tree, error) {
	if !namespacePattern.MatchString(namespace) {
		return nil, fmt.Errorf("invalid namespace %q", namespace)
	}

	return &Tree{
		db:        db,
		namespace: namespace,

		getStatement: fmt.Sprintf(`SELECT value FROM %s WHERE key = ?`, namespace),
		insertStatement: fmt.Sprintf(`
	INSERT INTO %s (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, namespace),
		removeStatement:  fmt.Sprintf(`DELETE FROM %s WHERE key = ?`, namespace),
		scanStatement:    fmt.Sprintf(`SELECT key, value FROM %s ORDER BY seq ASC`, namespace),
		reverseStatement: fmt.Sprintf(`SELECT key, value FROM %s ORDER BY seq DESC`, namespace),
		countStatement:   fmt.Sprintf(`SELECT COUNT(*) FROM %s`, namespace),
	}, nil
}

// Namespace returns the table name backing the tree.
func (t *Tree) Namespace() string {
	return t.namespace
}

// Get returns the value stored under key. The boolean is false when the key is absent.
func (t *Tree) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := t.db.QueryRowContext(ctx, t.getStatement, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, t.fail("get", key, err)
	}
	return value, true, nil
}

// Insert stores value under key, replacing any previous value in place.
func (t *Tree) Insert(ctx context.Context, key string, value []byte) error {
	if _, err := t.db.ExecContext(ctx, t.insertStatement, key, value); err != nil {
		return t.fail("insert", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (t *Tree) Remove(ctx context.Context, key string) error {
	if _, err := t.db.ExecContext(ctx, t.removeStatement, key); err != nil {
		return t.fail("remove", key, err)
	}
	return nil
}

// Items reads the whole tree in insertion order, or newest first when reverse is set.
// The rows are fully drained before returning so callers may write to the store
// while walking the result.
func (t *Tree) Items(ctx context.Context, reverse bool) ([]Item, error) {
	statement := t.scanStatement
	if reverse {
		statement = t.reverseStatement
	}

	rows, err := t.db.QueryContext(ctx, statement)
	if err != nil {
		return nil, t.fail("scan", "", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Key, &item.Value); err != nil {
			return nil, t.fail("scan", "", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, t.fail("scan", "", err)
	}

	return items, nil
}

// Len counts the keys in the tree.
func (t *Tree) Len(ctx context.Context) (int, error) {
	var n int
	if err := t.db.QueryRowContext(ctx, t.countStatement).Scan(&n); err != nil {
		return 0, t.fail("count", "", err)
	}
	return n, nil
}

func (t *Tree) fail(op, key string, err error) error {
	return &Error{Op: op, Namespace: t.namespace, Key: key, Err: err}
}
