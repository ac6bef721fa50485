package core

import (
	"errors"
	"fmt"
)

// Error is a coded domain error from the documented catalog. Codes are
// family-prefixed (RGX validation, IDT identity, SPK spok, MSG messaging,
// MYA account, GRP group, FLW follow, SRH search, USR user).
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// Is matches on the code so wrapped copies with contextual messages still
// compare equal to the sentinel.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMessagef keeps the code, replaces the message.
func (e *Error) WithMessagef(format string, args ...any) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the catalog code from err, or SYST-500 for causes that
// must stay internal.
func CodeOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return "SYST-500"
}

// Validation.
var (
	ErrInvalidPhone       = &Error{"RGX-001", "invalid phone number"}
	ErrInvalidCode        = &Error{"RGX-002", "invalid confirmation code"}
	ErrInvalidNickname    = &Error{"RGX-003", "invalid nickname"}
	ErrInvalidGender      = &Error{"RGX-004", "invalid gender"}
	ErrInvalidLocation    = &Error{"RGX-005", "invalid location"}
	ErrInvalidContentType = &Error{"RGX-006", "invalid content type"}
	ErrInvalidFile        = &Error{"RGX-007", "invalid file for content type"}
	ErrInvalidURL         = &Error{"RGX-008", "invalid url"}
	ErrTextTooShort       = &Error{"RGX-009", "text is too short"}
	ErrTextTooLong        = &Error{"RGX-010", "text is too long"}
	ErrInvalidRank        = &Error{"RGX-013", "invalid rank"}
	ErrTitleTooShort      = &Error{"RGX-014", "title is too short"}
	ErrTitleTooLong       = &Error{"RGX-015", "title is too long"}
)

// Identity.
var (
	ErrPhoneTaken         = &Error{"IDT-001", "phone number already used"}
	ErrAccountSuspended   = &Error{"IDT-002", "suspended account"}
	ErrAccountDeleted     = &Error{"IDT-003", "deleted account"}
	ErrWrongPhone         = &Error{"IDT-004", "wrong phone number"}
	ErrWrongCode          = &Error{"IDT-005", "wrong confirmation code"}
	ErrAccountNotFound    = &Error{"IDT-007", "account not found"}
	ErrInvalidSupportText = &Error{"IDT-008", "invalid support message"}
)

// Spok.
var (
	ErrSpokNotFound        = &Error{"SPK-001", "spok not found"}
	ErrSpokUnavailable     = &Error{"SPK-002", "spok is not available anymore"}
	ErrMediaMissing        = &Error{"SPK-003", "media file is missing"}
	ErrInstanceTextTooLong = &Error{"SPK-004", "instance text is too long"}
	ErrAnswerNotFound      = &Error{"SPK-005", "answer not found"}
	ErrAlreadyRespoked     = &Error{"SPK-006", "spok already re-spoked"}
	ErrCommentNotFound     = &Error{"SPK-008", "comment not found"}
	ErrUnansweredQuestions = &Error{"SPK-009", "poll questions have to be all answered"}
	ErrInvalidAnswer       = &Error{"SPK-010", "invalid answer to question"}
	ErrInvalidPollTitle    = &Error{"SPK-011", "invalid poll title"}
	ErrInvalidQuestions    = &Error{"SPK-012", "invalid poll questions"}
	ErrInvalidAnswers      = &Error{"SPK-013", "invalid poll answers"}
	ErrQuestionNotFound    = &Error{"SPK-014", "question not found"}
	ErrCreateSpok          = &Error{"SPK-106", "unable creating spok"}
	ErrRespoke             = &Error{"SPK-117", "unable re-spoking spok"}
	ErrUnspoke             = &Error{"SPK-118", "unable un-spoking spok"}
)

// Messaging.
var (
	ErrEmptyMessage    = &Error{"MSG-001", "message cannot be empty"}
	ErrTalkNotFound    = &Error{"MSG-002", "talk not found"}
	ErrMessageNotFound = &Error{"MSG-003", "message not found"}
)

// Account.
var (
	ErrNotificationNotFound = &Error{"MYA-001", "notification not found"}
)

// Groups.
var (
	ErrGroupNotFound = &Error{"GRP-001", "group not found"}
)

// Follow graph.
var (
	ErrFollowersPrivate  = &Error{"FLW-001", "not allowed to load followers"}
	ErrFollowingsPrivate = &Error{"FLW-002", "not allowed to load followings"}
)

// Search.
var (
	ErrInvalidHashtag = &Error{"SRH-004", "invalid hashtag"}
)

// Users.
var (
	ErrUserNotFound = &Error{"USR-001", "user not found"}
)

// Transport.
var (
	ErrUnauthorized = &Error{"SYST-401", "authentication required"}
	ErrNotAllowed   = &Error{"SYST-403", "not allowed"}
	ErrBadCursor    = &Error{"SYST-400", "invalid pagination position"}
)
