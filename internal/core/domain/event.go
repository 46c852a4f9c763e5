package domain

import "time"

// AuthEventKind names an auditable account action.
type AuthEventKind string

const (
	EventLogin          AuthEventKind = "login"
	EventSignUp         AuthEventKind = "signup"
	EventPasswordUpdate AuthEventKind = "password_update"
	EventResetIssued    AuthEventKind = "reset_token_issued"
)

// AuthEvent is an audit trail entry for an account action.
type AuthEvent struct {
	Email     string
	Kind      AuthEventKind
	Role      Authority // empty for role-less actions
	Success   bool
	Message   string // failure message, if any
	Timestamp time.Time
}
