// internal/game/errors.go
package game

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error identifier returned to clients.
type ErrorCode string

const (
	CodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeNotOwner          ErrorCode = "NOT_OWNER"
	CodeRoomNotFound      ErrorCode = "ROOM_NOT_FOUND"
	CodeInvalidPhase      ErrorCode = "INVALID_PHASE"
	CodeNotYourTurn       ErrorCode = "NOT_YOUR_TURN"
	CodeInvalidAction     ErrorCode = "INVALID_ACTION"
	CodeInvalidGame       ErrorCode = "INVALID_GAME"
	CodeInvalidSetting    ErrorCode = "INVALID_SETTING"
	CodeAlreadySubmitted  ErrorCode = "ALREADY_SUBMITTED"
	CodeInvalidSubmission ErrorCode = "INVALID_SUBMISSION"
	CodeRoomFull          ErrorCode = "ROOM_FULL"
	CodeRaceCondition     ErrorCode = "RACE_CONDITION"
)

var codeStatus = map[ErrorCode]int{
	CodeInvalidRequest:    http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeNotOwner:          http.StatusForbidden,
	CodeRoomNotFound:      http.StatusNotFound,
	CodeInvalidPhase:      http.StatusConflict,
	CodeNotYourTurn:       http.StatusConflict,
	CodeInvalidAction:     http.StatusBadRequest,
	CodeInvalidGame:       http.StatusBadRequest,
	CodeInvalidSetting:    http.StatusBadRequest,
	CodeAlreadySubmitted:  http.StatusConflict,
	CodeInvalidSubmission: http.StatusBadRequest,
	CodeRoomFull:          http.StatusConflict,
	CodeRaceCondition:     http.StatusConflict,
}

// Error is a domain error raised by rule engines and the room service. It is safe to show
// to clients verbatim; any other error type is an infrastructure fault.
type Error struct {
	Message string    `json:"error"`
	Code    ErrorCode `json:"code"`
	Status  int       `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a domain error with the status associated with code.
func NewError(code ErrorCode, format string, args ...any) *Error {
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusBadRequest
	}
	return &Error{Message: fmt.Sprintf(format, args...), Code: code, Status: status}
}

// AsError reports whether err is (or wraps) a domain error.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func ErrInvalidRequest(format string, args ...any) *Error {
	return NewError(CodeInvalidRequest, format, args...)
}

func ErrInvalidPhase(format string, args ...any) *Error {
	return NewError(CodeInvalidPhase, format, args...)
}

func ErrNotYourTurn() *Error {
	return NewError(CodeNotYourTurn, "it is not your turn")
}

func ErrInvalidAction(format string, args ...any) *Error {
	return NewError(CodeInvalidAction, format, args...)
}

func ErrInvalidSetting(format string, args ...any) *Error {
	return NewError(CodeInvalidSetting, format, args...)
}

// ErrUnknownAction is returned when an engine does not recognise an action type.
func ErrUnknownAction(actionType string) *Error {
	return NewError(CodeInvalidAction, "unknown action %q", actionType)
}
