package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed error that carries a stable machine code and the HTTP
// status it should be rendered with.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an Error with no underlying cause.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an Error around an underlying cause so errors.Is/As keep
// working through it.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Sentinels shared across services.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Scheduling errors raised by the generation engines and mutation operations.
var (
	ErrNoSchedulableSlots    = New("NO_SCHEDULABLE_SLOTS", http.StatusPreconditionFailed, "no schedulable slots: add school days and time slots, and ensure not every slot is a break period")
	ErrNoDemand              = New("NO_DEMAND", http.StatusPreconditionFailed, "nothing to schedule for this scope")
	ErrGenerationInfeasible  = New("GENERATION_INFEASIBLE", http.StatusUnprocessableEntity, "could not place every demand: ensure enough slots and rooms, that teacher availability allows scheduling, and that weekly periods and per-day caps fit the grid")
	ErrGenerationInProgress  = New("GENERATION_IN_PROGRESS", http.StatusConflict, "a generation run for this scope is already in progress")
	ErrCrossScopeSwap        = New("CROSS_SCOPE_SWAP", http.StatusBadRequest, "cannot swap entries belonging to different scopes")
	ErrSlotTaken             = New("SLOT_TAKEN", http.StatusConflict, "class already occupies the target slot")
	ErrTeacherBusy           = New("TEACHER_BUSY", http.StatusConflict, "teacher is already busy in the target slot")
	ErrSupervisorBusy        = New("SUPERVISOR_BUSY", http.StatusConflict, "supervisor is already busy in the target slot")
	ErrRoomBusy              = New("ROOM_BUSY", http.StatusConflict, "room is already in use in the target slot")
	ErrClassDailyCapExceeded = New("CLASS_DAILY_CAP_EXCEEDED", http.StatusConflict, "class has reached its sitting cap for that day")
)

// FromError extracts the *Error from err's chain, or wraps unknown errors
// as internal so nothing leaks raw to clients.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a sentinel so a call site can override its message without
// mutating the shared value.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
