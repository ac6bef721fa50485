package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"spokd/internal/core"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// Envelope is the uniform response shape: data on success, coded errors
// otherwise, always naming the resource and the outcome. The HTTP code
// travels in the response line only.
type Envelope struct {
	Data     any         `json:"data"`
	Errors   []ErrorItem `json:"errors"`
	Resource string      `json:"resource"`
	Status   string      `json:"status"`
}

type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var notFoundCodes = map[string]struct{}{
	"IDT-007": {},
	"USR-001": {},
	"SPK-001": {},
	"SPK-005": {},
	"SPK-008": {},
	"SPK-014": {},
	"MSG-002": {},
	"MSG-003": {},
	"GRP-001": {},
	"MYA-001": {},
}

func respond(w http.ResponseWriter, resource string, status int, data any) {
	envelope := Envelope{
		Data:     data,
		Errors:   []ErrorItem{},
		Resource: resource,
		Status:   statusSuccess,
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope) //nolint:errcheck
}

func respondError(w http.ResponseWriter, resource string, err error) {
	status := http.StatusBadRequest
	item := ErrorItem{Code: core.CodeOf(err)}

	var coded *core.Error
	if errors.As(err, &coded) {
		item.Message = coded.Message
	} else {
		status = http.StatusInternalServerError
		item.Message = "internal error"
	}

	switch {
	case item.Code == core.ErrUnauthorized.Code:
		status = http.StatusUnauthorized
	case item.Code == core.ErrNotAllowed.Code:
		status = http.StatusForbidden
	case item.Code == core.ErrAlreadyRespoked.Code || item.Code == core.ErrPhoneTaken.Code:
		status = http.StatusConflict
	default:
		if _, ok := notFoundCodes[item.Code]; ok {
			status = http.StatusNotFound
		}
	}

	envelope := Envelope{
		Data:     nil,
		Errors:   []ErrorItem{item},
		Resource: resource,
		Status:   statusFailed,
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope) //nolint:errcheck
}
