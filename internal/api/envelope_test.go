package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"spokd/internal/core"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var envelope Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestRespond(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respond(rec, "spok", http.StatusCreated, map[string]int{"id": 7})

	require.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "spok", envelope.Resource)
	require.Equal(t, "success", envelope.Status)
	require.Empty(t, envelope.Errors)
	require.NotNil(t, envelope.Data)
}

func TestRespondError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unauthorized", core.ErrUnauthorized, http.StatusUnauthorized, "SYST-401"},
		{"forbidden", core.ErrNotAllowed, http.StatusForbidden, "SYST-403"},
		{"duplicate respoke", core.ErrAlreadyRespoked, http.StatusConflict, "SPK-006"},
		{"phone taken", core.ErrPhoneTaken, http.StatusConflict, "IDT-001"},
		{"spok not found", core.ErrSpokNotFound, http.StatusNotFound, "SPK-001"},
		{"user not found", core.ErrUserNotFound, http.StatusNotFound, "USR-001"},
		{"talk not found", core.ErrTalkNotFound, http.StatusNotFound, "MSG-002"},
		{"validation", core.ErrInvalidPhone, http.StatusBadRequest, "RGX-001"},
		{"bad cursor", core.ErrBadCursor, http.StatusBadRequest, "SYST-400"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			respondError(rec, "test", tc.err)

			require.Equal(t, tc.status, rec.Code)

			envelope := decodeEnvelope(t, rec)
			require.Equal(t, "failed", envelope.Status)
			require.Len(t, envelope.Errors, 1)
			require.Equal(t, tc.code, envelope.Errors[0].Code)
			require.NotEmpty(t, envelope.Errors[0].Message)
		})
	}

	t.Run("uncoded errors stay internal", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respondError(rec, "test", errors.New("pq: connection refused"))

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		envelope := decodeEnvelope(t, rec)
		require.Equal(t, "failed", envelope.Status)
		require.Equal(t, "SYST-500", envelope.Errors[0].Code)
		require.Equal(t, "internal error", envelope.Errors[0].Message)
	})

	t.Run("wrapped copies keep their status", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		respondError(rec, "test", core.ErrBadCursor.WithMessagef("id must be positive, got %d", -1))

		require.Equal(t, http.StatusBadRequest, rec.Code)

		envelope := decodeEnvelope(t, rec)
		require.Equal(t, "SYST-400", envelope.Errors[0].Code)
		require.Equal(t, "id must be positive, got -1", envelope.Errors[0].Message)
	})
}
