package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/backend"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// SignInService turns a profile's identifiers into a token bag and completes
// the backend handshake. Each attempt runs the state machine
//
//	ResolvingIdentifier(0..N) -> Connecting -> Authenticating -> Succeeded | Failed
//
// one step at a time. Identifiers are resolved strictly in profile order and
// identifiers without a registered provider are skipped. Nothing is retried.
type SignInService struct {
	store     ProfileStore
	providers *IdentityProviderRegistry
	backend   backend.AuthBackend
	endpoint  string

	mutex    deadlock.Mutex
	inflight map[uint32]*inflightAttempt

	// closing tracks backend sessions still being closed in the background.
	closing sync.WaitGroup
}

// saveTimeout bounds the save that follows a successful authentication. The
// save does not inherit the attempt's cancellation.
const saveTimeout = 10 * time.Second

var _ SignInGenerator = (*SignInService)(nil)

type inflightAttempt struct {
	id     string
	cancel context.CancelCauseFunc
}

// signInRun is the per-attempt data threaded through the state machine.
type signInRun struct {
	id         string
	profile    models.Profile
	parameters map[string]string
	tokens     *models.TokenBag
	session    backend.Session
	saveErr    error
	logger     zerolog.Logger
}

// NewSignInService creates the orchestrator. endpoint is passed to AuthBackend.Connect.
func NewSignInService(store ProfileStore, providers *IdentityProviderRegistry, authBackend backend.AuthBackend, endpoint string) *SignInService {
	return &SignInService{
		store:     store,
		providers: providers,
		backend:   authBackend,
		endpoint:  endpoint,
		inflight:  make(map[uint32]*inflightAttempt),
	}
}

// SignIn runs one attempt for the profile stored under fingerprint. Attempts
// for different profiles run independently; a new attempt for the same
// profile cancels the one in flight, which then fails with ErrSignInSuperseded.
// Cancelling ctx fails the attempt at the next step.
func (s *SignInService) SignIn(ctx context.Context, fingerprint uint32, parameters map[string]string) models.SignInResult {
	attemptID := uuid.NewString()
	logger := log.With().Str("attemptId", attemptID).Uint32("fingerprint", fingerprint).Logger()

	profile, err := s.store.ProfileByFingerprint(fingerprint)
	if err != nil {
		logger.Warn().Err(err).Msg("Sign-in requested for unknown profile")
		return models.SignInResult{AttemptID: attemptID, Fingerprint: fingerprint, Message: err.Error()}
	}

	ctx, release := s.track(ctx, fingerprint, attemptID)
	defer release()

	run := &signInRun{
		id:         attemptID,
		profile:    profile,
		parameters: parameters,
		tokens:     models.NewTokenBag(),
		logger:     logger,
	}
	defer run.tokens.Clear()

	logger.Info().Int("identifiers", profile.NumIdentifiers()).Msg("Starting sign-in")

	state := models.ResolvingIdentifier(0)
	for !state.Terminal() {
		next := s.step(ctx, run, state)
		logger.Debug().Stringer("from", state).Stringer("to", next).Msg("Sign-in transition")
		state = next
	}

	if run.session != nil {
		s.closeSession(run)
	}

	result := models.SignInResult{AttemptID: attemptID, Fingerprint: fingerprint}
	if state.Phase == models.PhaseFailed {
		logger.Warn().Str("reason", state.Reason).Msg("Sign-in failed")
		result.Message = state.Reason
		return result
	}

	result.Success = true
	if run.saveErr != nil {
		result.SaveErr = run.saveErr
		result.Message = fmt.Sprintf("signed in, but saving profiles failed: %v", run.saveErr)
	}
	logger.Info().Msg("Sign-in succeeded")
	return result
}

// step performs the work of state and returns the state that follows it.
func (s *SignInService) step(ctx context.Context, run *signInRun, state models.SignInState) models.SignInState {
	if err := ctx.Err(); err != nil {
		return models.Failed(cancelReason(ctx))
	}

	switch state.Phase {
	case models.PhaseResolvingIdentifier:
		return s.resolveIdentifier(ctx, run, state.Index)

	case models.PhaseConnecting:
		session, err := s.backend.Connect(ctx, s.endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return models.Failed(cancelReason(ctx))
			}
			run.logger.Warn().Err(err).Str("endpoint", s.endpoint).Msg("Connecting to auth backend failed")
			return models.Failed(fmt.Sprintf("connect error: %d", backend.ErrorCode(err)))
		}
		run.session = session
		return models.SignInState{Phase: models.PhaseAuthenticating}

	case models.PhaseAuthenticating:
		if err := run.session.Authenticate(ctx, run.tokens); err != nil {
			if ctx.Err() != nil {
				return models.Failed(cancelReason(ctx))
			}
			run.logger.Warn().Err(err).Msg("Authenticating with auth backend failed")
			return models.Failed(fmt.Sprintf("authenticate error: %d", backend.ErrorCode(err)))
		}
		// persist even if the caller went away or a newer attempt took over
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		// the attempt counts as successful even if the save fails; the error is surfaced in the result
		if err := s.store.Save(saveCtx); err != nil {
			run.logger.Error().Err(err).Msg("Failed to save profiles after sign-in")
			run.saveErr = err
		}
		return models.SignInState{Phase: models.PhaseSucceeded}

	default:
		return models.Failed(fmt.Sprintf("invalid sign-in state %s", state))
	}
}

func (s *SignInService) resolveIdentifier(ctx context.Context, run *signInRun, index int) models.SignInState {
	if index >= run.profile.NumIdentifiers() {
		return models.SignInState{Phase: models.PhaseConnecting}
	}

	identifier := run.profile.Identifiers[index]
	provider, ok := s.providers.Get(identifier.Key)
	if !ok {
		run.logger.Debug().Str("identifierKey", identifier.Key).Msg("No identity provider registered, skipping identifier")
		return models.ResolvingIdentifier(index + 1)
	}

	result, err := provider.ProcessIdentity(ctx, run.profile, run.parameters)
	if err != nil {
		if ctx.Err() != nil {
			return models.Failed(cancelReason(ctx))
		}
		run.logger.Warn().Err(err).Str("identifierKey", identifier.Key).Msg("Identity provider failed")
		return models.Failed(err.Error())
	}
	if result == nil {
		return models.Failed(fmt.Sprintf("identity provider %q returned no token", identifier.Key))
	}

	run.tokens.AddToken(result.TokenType, result.Token)
	run.logger.Debug().Str("identifierKey", identifier.Key).Str("tokenType", result.TokenType).Msg("Acquired token")
	return models.ResolvingIdentifier(index + 1)
}

// closeSession releases the backend session in the background so a slow or
// unreachable backend does not delay the result.
func (s *SignInService) closeSession(run *signInRun) {
	session, logger := run.session, run.logger
	s.closing.Add(1)
	go func() {
		defer s.closing.Done()
		if err := session.Close(); err != nil {
			logger.Debug().Err(err).Msg("Closing auth backend session failed")
		}
	}()
}

// Wait blocks until every backend session opened by past attempts is closed.
func (s *SignInService) Wait() {
	s.closing.Wait()
}

// track registers the attempt for fingerprint, cancelling any earlier attempt
// for the same profile. The returned func must be called when the attempt ends.
func (s *SignInService) track(ctx context.Context, fingerprint uint32, attemptID string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)

	s.mutex.Lock()
	if prev, ok := s.inflight[fingerprint]; ok {
		log.Info().Str("attemptId", prev.id).Str("supersededBy", attemptID).Msg("Superseding in-flight sign-in")
		prev.cancel(ErrSignInSuperseded)
	}
	s.inflight[fingerprint] = &inflightAttempt{id: attemptID, cancel: cancel}
	s.mutex.Unlock()

	return ctx, func() {
		s.mutex.Lock()
		if cur, ok := s.inflight[fingerprint]; ok && cur.id == attemptID {
			delete(s.inflight, fingerprint)
		}
		s.mutex.Unlock()
		cancel(nil)
	}
}

func cancelReason(ctx context.Context) string {
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrSignInSuperseded) {
		return cause.Error()
	}
	return fmt.Sprintf("sign-in cancelled: %v", cause)
}
