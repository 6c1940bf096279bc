package service

import (
	"context"
	"errors"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileExists       = errors.New("profile already exists")
	ErrMalformedProfile    = errors.New("malformed profile")
	ErrProfilesUnreadable  = errors.New("stored profiles could not be read")
	ErrAlreadyInitialized  = errors.New("profile service already initialized")
	ErrSignInSuperseded    = errors.New("sign-in superseded by a newer attempt")
	ErrIndexOutOfRange     = errors.New("profile index out of range")
	ErrMissingParameter    = errors.New("missing sign-in parameter")
	ErrIdentifierNotOnFile = errors.New("profile has no identifier for provider")
)

// SuggestionProvider discovers candidate profiles, e.g. from locally installed platforms.
type SuggestionProvider interface {
	// Name identifies the provider in logs.
	Name() string
	// GetProfiles invokes emit once per discovered candidate.
	GetProfiles(ctx context.Context, emit func(models.Profile)) error
}

// IdentityProvider exchanges the identifier registered under IdentifierKey for a token.
type IdentityProvider interface {
	IdentifierKey() string
	ProcessIdentity(ctx context.Context, profile models.Profile, parameters map[string]string) (*models.IdentityResult, error)
}

// ProfileReader is read access to the profile store. Returned profiles are copies.
type ProfileReader interface {
	Count() int
	ProfileAt(index int) (models.Profile, error)
	ProfileByFingerprint(fingerprint uint32) (models.Profile, error)
	Profiles() []models.Profile
	PrimaryProfile() (uint32, bool)
}

// ProfileStore is the store surface used by sign-in and the host API.
type ProfileStore interface {
	ProfileReader
	Promote(fingerprint uint32) error
	SetPrimaryProfile(fingerprint uint32) error
	Save(ctx context.Context) error
}

// SignInGenerator runs sign-in attempts.
type SignInGenerator interface {
	// SignIn resolves tokens for the profile and completes the backend handshake.
	// The outcome is always reported through the result, never as an error.
	SignIn(ctx context.Context, fingerprint uint32, parameters map[string]string) models.SignInResult
}
