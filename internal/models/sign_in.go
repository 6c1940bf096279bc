package models

import "fmt"

// SignInPhase is the phase of a sign-in attempt.
type SignInPhase int

const (
	PhaseResolvingIdentifier SignInPhase = iota
	PhaseConnecting
	PhaseAuthenticating
	PhaseSucceeded
	PhaseFailed
)

func (p SignInPhase) String() string {
	switch p {
	case PhaseResolvingIdentifier:
		return "resolving_identifier"
	case PhaseConnecting:
		return "connecting"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SignInState is a state of the sign-in state machine.
// Index is only meaningful while resolving identifiers; Reason only once failed.
type SignInState struct {
	Phase  SignInPhase
	Index  int
	Reason string
}

// Terminal reports whether the state ends the attempt.
func (s SignInState) Terminal() bool {
	return s.Phase == PhaseSucceeded || s.Phase == PhaseFailed
}

func (s SignInState) String() string {
	switch s.Phase {
	case PhaseResolvingIdentifier:
		return fmt.Sprintf("%s(%d)", s.Phase, s.Index)
	case PhaseFailed:
		return fmt.Sprintf("%s(%s)", s.Phase, s.Reason)
	default:
		return s.Phase.String()
	}
}

func ResolvingIdentifier(i int) SignInState {
	return SignInState{Phase: PhaseResolvingIdentifier, Index: i}
}

func Failed(reason string) SignInState {
	return SignInState{Phase: PhaseFailed, Reason: reason}
}

// IdentityResult is what an identity provider returns for one identifier.
type IdentityResult struct {
	TokenType string
	Token     string
}

// SignInResult is the single outcome reported to the caller of a sign-in attempt.
type SignInResult struct {
	AttemptID   string `json:"attemptId"`
	Fingerprint uint32 `json:"fingerprint"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	// SaveErr is set when authentication succeeded but persisting the store did not.
	SaveErr error `json:"-"`
}
