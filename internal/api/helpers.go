package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spokd/internal/core"
	"spokd/internal/pagination"
)

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrBadCursor.WithMessagef("invalid %s", name)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.ErrBadCursor.WithMessagef("invalid request body")
	}
	return nil
}

// cursorBoundary decodes the page token from the query string into a keyset
// boundary. An absent token starts at the newest row.
func cursorBoundary(r *http.Request) (core.Keyset, error) {
	cursor, err := pagination.Decode(r.URL.Query().Get("cursor"))
	if err != nil {
		return core.Keyset{}, err
	}
	return cursor.Keyset(), nil
}
