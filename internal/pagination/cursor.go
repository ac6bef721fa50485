// Package pagination implements the opaque position tokens shared by every
// list endpoint. A token encodes a strict keyset boundary (rows strictly
// older or newer than the last seen id), never an offset, so inserts ahead
// of an issued cursor cannot shift or duplicate pages.
package pagination

import (
	"encoding/base64"
	"encoding/json"

	"spokd/internal/core"
)

const (
	// PageSize applies to every list endpoint except talk messages.
	PageSize = 10
	// MessagePageSize applies to talk message pages.
	MessagePageSize = 20
)

type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

type Cursor struct {
	LastSeenID int64     `json:"last"`
	Direction  Direction `json:"dir"`
}

// Keyset turns the token into the repository boundary. Previous tokens page
// backward: newer rows than the anchor, still returned newest-first.
func (c Cursor) Keyset() core.Keyset {
	return core.Keyset{BoundaryID: c.LastSeenID, Backward: c.Direction == Previous}
}

func Encode(lastSeenID int64, direction Direction) string {
	raw, _ := json.Marshal(Cursor{LastSeenID: lastSeenID, Direction: direction})
	return base64.RawURLEncoding.EncodeToString(raw)
}

func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{Direction: Next}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, core.ErrBadCursor
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, core.ErrBadCursor
	}
	if c.Direction != Next && c.Direction != Previous {
		return Cursor{}, core.ErrBadCursor
	}
	return c, nil
}

// Page wraps one page of items with its boundary tokens.
type Page[T any] struct {
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Items    []T    `json:"items"`
}

// NewPage builds the page envelope from an id-descending slice. The next
// token anchors below the last item, the previous token above the first
// one. A short page means the boundary in the fetch direction was reached,
// so the token pointing further that way is dropped.
func NewPage[T any](items []T, limit int, fetched core.Keyset, id func(T) int64) Page[T] {
	page := Page[T]{Items: items}
	if len(items) == 0 {
		return page
	}

	full := len(items) == limit
	if full || fetched.Backward {
		page.Next = Encode(id(items[len(items)-1]), Next)
	}
	if full || !fetched.Backward {
		page.Previous = Encode(id(items[0]), Previous)
	}
	return page
}
