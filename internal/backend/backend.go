// Package backend talks to the remote auth backend: a session is connected
// first, then authenticated with the token bag collected during sign-in.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// CodeUnavailable is reported when the backend could not be reached at all.
const CodeUnavailable = -1

// DefaultEndpoint is the backend address used when none is configured.
const DefaultEndpoint = "http://localhost:3036"

// AuthBackend establishes sessions with the remote auth backend.
type AuthBackend interface {
	Connect(ctx context.Context, endpoint string) (Session, error)
}

// Session is a connected backend session.
type Session interface {
	// Authenticate submits the token bag. Failures are reported as *Error.
	Authenticate(ctx context.Context, tokens *models.TokenBag) error
	Close() error
}

// Error carries the numeric error code reported by the backend.
type Error struct {
	Op      string
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed with code %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s failed with code %d: %s", e.Op, e.Code, e.Message)
}

// ErrorCode extracts the backend code from err, or CodeUnavailable when err
// does not carry one.
func ErrorCode(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeUnavailable
}
