// Package pagination implements opaque keyset cursors for newest-first
// listings ordered by (created_at, id).
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCursor is returned when a cursor string cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is a decoded position in a result set.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Skip reports whether an item at (createdAt, id) lies at or before the
// cursor position in a newest-first ordering, i.e. it was already
// returned on an earlier page.
func (c *Cursor) Skip(createdAt time.Time, id string) bool {
	if createdAt.After(c.CreatedAt) {
		return true
	}
	return createdAt.Equal(c.CreatedAt) && id >= c.ID
}

// Encode returns an opaque cursor string for the item at (createdAt, id).
func Encode(createdAt time.Time, id string) string {
	raw := fmt.Sprintf("%d|%s", createdAt.UnixNano(), id)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// Decode parses an opaque cursor string. An empty string decodes to a nil
// cursor, meaning "first page".
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{
		CreatedAt: time.Unix(0, nanos).UTC(),
		ID:        parts[1],
	}, nil
}

// ComputePage trims a slice fetched with limit+1 items down to limit,
// using extractKey to read (createdAt, id) from the last kept item.
// Returns the trimmed items, the next cursor, and whether more remain.
func ComputePage[T any](items []T, limit int, extractKey func(T) (time.Time, string)) ([]T, string, bool) {
	if len(items) <= limit {
		return items, "", false
	}
	items = items[:limit]
	last := items[len(items)-1]
	createdAt, id := extractKey(last)
	return items, Encode(createdAt, id), true
}
