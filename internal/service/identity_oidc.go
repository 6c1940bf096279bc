package service

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// OIDCProvider verifies a caller-supplied ID token (parameter "<key>.id_token")
// and checks that its subject is the profile's identifier value.
type OIDCProvider struct {
	key      string
	verifier *oidc.IDTokenVerifier
}

var _ IdentityProvider = (*OIDCProvider)(nil)

// NewOIDCProvider discovers the issuer's configuration and keys.
func NewOIDCProvider(ctx context.Context, key, issuerURL, clientID string) (*OIDCProvider, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		log.Error().Err(err).Str("issuer", issuerURL).Msg("Failed to create OIDC provider")
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	return NewOIDCProviderWithVerifier(key, provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

// NewOIDCProviderWithVerifier uses an already configured verifier.
func NewOIDCProviderWithVerifier(key string, verifier *oidc.IDTokenVerifier) *OIDCProvider {
	return &OIDCProvider{key: key, verifier: verifier}
}

func (p *OIDCProvider) IdentifierKey() string {
	return p.key
}

// ProcessIdentity returns the verified raw token as an "id_token".
func (p *OIDCProvider) ProcessIdentity(ctx context.Context, profile models.Profile, parameters map[string]string) (*models.IdentityResult, error) {
	subject, ok := identifierValue(profile, p.key)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrIdentifierNotOnFile, p.key)
	}
	rawIDToken, err := parameter(parameters, p.key, "id_token")
	if err != nil {
		return nil, err
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn().Err(err).Str("provider", p.key).Msg("Failed to verify ID token")
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	if idToken.Subject != subject {
		log.Warn().Str("provider", p.key).Msg("ID token subject does not match profile identifier")
		return nil, fmt.Errorf("ID token subject does not match %s identifier", p.key)
	}

	log.Info().Str("issuer", idToken.Issuer).Str("provider", p.key).Msg("ID Token Verified Successfully")
	return &models.IdentityResult{TokenType: "id_token", Token: rawIDToken}, nil
}
