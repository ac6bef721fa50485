package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spokd/internal/core"
	"spokd/internal/pagination"
	"spokd/internal/search"
)

const resourceSearch = "search"

func (s *Server) handleLastSpoks(w http.ResponseWriter, r *http.Request) {
	s.spokList(w, r, s.Search.Last)
}

func (s *Server) handleTrendySpoks(w http.ResponseWriter, r *http.Request) {
	s.spokList(w, r, s.Search.Trendy)
}

func (s *Server) handlePopularSpoks(w http.ResponseWriter, r *http.Request) {
	s.spokList(w, r, s.Search.Popular)
}

func (s *Server) handleFriendsSpoks(w http.ResponseWriter, r *http.Request) {
	s.spokList(w, r, func(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
		return s.Search.Friends(ctx, userID(ctx), page, limit)
	})
}

func (s *Server) spokList(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, page core.Keyset, limit int) ([]core.Spok, error),
) {
	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceSearch, err)
		return
	}

	spoks, err := list(r.Context(), cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceSearch, err)
		return
	}

	page := pagination.NewPage(spokViews(spoks), pagination.PageSize, cursor, func(v SpokView) int64 {
		return v.ID
	})
	respond(w, resourceSearch, http.StatusOK, page)
}

// handleSearchSpoks searches spok texts: ?terms=a,b&since=...&until=...
func (s *Server) handleSearchSpoks(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorBoundary(r)
	if err != nil {
		respondError(w, resourceSearch, err)
		return
	}

	criteria := search.Criteria{
		Terms: strings.Split(r.URL.Query().Get("terms"), ","),
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		if criteria.Since, err = time.Parse(time.RFC3339, raw); err != nil {
			respondError(w, resourceSearch, core.ErrBadCursor.WithMessagef("invalid since"))
			return
		}
	}
	if raw := r.URL.Query().Get("until"); raw != "" {
		if criteria.Until, err = time.Parse(time.RFC3339, raw); err != nil {
			respondError(w, resourceSearch, core.ErrBadCursor.WithMessagef("invalid until"))
			return
		}
	}

	spoks, err := s.Search.ByCriteria(r.Context(), criteria, cursor, pagination.PageSize)
	if err != nil {
		respondError(w, resourceSearch, err)
		return
	}

	page := pagination.NewPage(spokViews(spoks), pagination.PageSize, cursor, func(v SpokView) int64 {
		return v.ID
	})
	respond(w, resourceSearch, http.StatusOK, page)
}

// handleAutocomplete matches nicknames by prefix; in-flight requests of the
// same caller are cancelled by newer ones.
func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	key := strconv.FormatInt(userID(r.Context()), 10)

	accounts, err := s.Search.Autocomplete(r.Context(), key, r.URL.Query().Get("prefix"))
	if err != nil {
		respondError(w, resourceSearch, err)
		return
	}
	respond(w, resourceSearch, http.StatusOK, accountViews(accounts))
}
