package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// Expected outcomes of normal concurrent operation. Callers racing the
	// commit protocol treat these as "someone else already handled it".
	CodeStaleState        ErrorCode = "STALE_STATE"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeNotYourTurn       ErrorCode = "NOT_YOUR_TURN"
	CodeTokenMismatch     ErrorCode = "TOKEN_MISMATCH"
	CodeTimerNotExpired   ErrorCode = "TIMER_NOT_EXPIRED"
	CodePoolExhausted     ErrorCode = "POOL_EXHAUSTED"

	// Storage or transport failure, not attributable to caller behavior.
	CodeInfrastructure ErrorCode = "INFRASTRUCTURE_ERROR"
)

// DraftError is the single machine-readable rejection every mutating draft
// operation can return. No partial-success payloads exist.
type DraftError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *DraftError) Error() string {
	return e.Message
}

func NewDraftError(code ErrorCode, format string, args ...any) *DraftError {
	return &DraftError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func ErrStaleState(expected, actual int) *DraftError {
	return NewDraftError(CodeStaleState, "expected pick index %d but draft is at %d", expected, actual)
}

func ErrInvalidTransition(from LeagueStatus, action string) *DraftError {
	return NewDraftError(CodeInvalidTransition, "cannot %s while draft is %s", action, from)
}

func ErrNotYourTurn(pickIndex int) *DraftError {
	return NewDraftError(CodeNotYourTurn, "not your turn at pick index %d", pickIndex)
}

func ErrTokenMismatch() *DraftError {
	return NewDraftError(CodeTokenMismatch, "credentials do not authorize this action")
}

func ErrTimerNotExpired(remainingSeconds float64) *DraftError {
	return NewDraftError(CodeTimerNotExpired, "turn timer has %.1fs remaining", remainingSeconds)
}

func ErrPoolExhausted() *DraftError {
	return NewDraftError(CodePoolExhausted, "no available player remains")
}

// CodeOf extracts the rejection code, defaulting unclassified errors to
// infrastructure failures.
func CodeOf(err error) ErrorCode {
	var de *DraftError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInfrastructure
}

// IsExpected reports whether err is a routine concurrency outcome that
// callers swallow silently rather than surface to a user.
func IsExpected(err error) bool {
	var de *DraftError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code != CodeInfrastructure
}
