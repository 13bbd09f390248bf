package engine

import "fmt"

// Kind groups error codes by how the caller should recover.
type Kind string

const (
	// KindValidation errors are recoverable locally; no state was mutated.
	KindValidation Kind = "VALIDATION"
	// KindState errors mean the caller's view is stale; re-sync via snapshot.
	KindState Kind = "STATE"
	// KindResource errors are surfaced to administrators; the draft pauses.
	KindResource Kind = "RESOURCE"
)

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeNotYourTurn             Code = "NOT_YOUR_TURN"
	CodePlayerUnavailable       Code = "PLAYER_UNAVAILABLE"
	CodeDuplicateSubmission     Code = "DUPLICATE_SUBMISSION"
	CodeInvalidParticipantOrder Code = "INVALID_PARTICIPANT_ORDER"
	CodeAlreadyExists           Code = "ALREADY_EXISTS"
	CodeNotActive               Code = "NOT_ACTIVE"
	CodeInvalidTransition       Code = "INVALID_TRANSITION"
	CodeNotFound                Code = "NOT_FOUND"
	CodePoolExhausted           Code = "POOL_EXHAUSTED"
)

// Error is a draft command rejection.
type Error struct {
	Kind Kind
	Code Code
	msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}

// Is matches on code so callers can use errors.Is against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotYourTurn             = &Error{Kind: KindValidation, Code: CodeNotYourTurn, msg: "pick submitted out of turn"}
	ErrPlayerUnavailable       = &Error{Kind: KindValidation, Code: CodePlayerUnavailable, msg: "player already drafted or not in the available pool"}
	ErrDuplicateSubmission     = &Error{Kind: KindValidation, Code: CodeDuplicateSubmission, msg: "a pick for this pick number was already recorded"}
	ErrInvalidParticipantOrder = &Error{Kind: KindValidation, Code: CodeInvalidParticipantOrder, msg: "participant order needs at least 2 distinct participants"}
	ErrAlreadyExists           = &Error{Kind: KindState, Code: CodeAlreadyExists, msg: "a draft session already exists for this league"}
	ErrNotActive               = &Error{Kind: KindState, Code: CodeNotActive, msg: "draft session is not active"}
	ErrInvalidTransition       = &Error{Kind: KindState, Code: CodeInvalidTransition, msg: "command not valid in the current session status"}
	ErrNotFound                = &Error{Kind: KindState, Code: CodeNotFound, msg: "no draft session for this league"}
	ErrPoolExhausted           = &Error{Kind: KindResource, Code: CodePoolExhausted, msg: "no players left in the available pool"}
)
