package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// OAuthRefreshProvider exchanges a caller-supplied refresh token
// (parameter "<key>.refresh_token") for an access token.
type OAuthRefreshProvider struct {
	key         string
	oAuthConfig *oauth2.Config
}

var _ IdentityProvider = (*OAuthRefreshProvider)(nil)

// NewOAuthRefreshProvider creates a provider for identifiers with the given key.
func NewOAuthRefreshProvider(key string, cfg *oauth2.Config) *OAuthRefreshProvider {
	return &OAuthRefreshProvider{key: key, oAuthConfig: cfg}
}

func (p *OAuthRefreshProvider) IdentifierKey() string {
	return p.key
}

// ProcessIdentity refreshes the token; the token type reported by the
// authorization server (usually "Bearer") is lower-cased to "bearer".
func (p *OAuthRefreshProvider) ProcessIdentity(ctx context.Context, profile models.Profile, parameters map[string]string) (*models.IdentityResult, error) {
	if _, ok := identifierValue(profile, p.key); !ok {
		return nil, fmt.Errorf("%w %q", ErrIdentifierNotOnFile, p.key)
	}
	refreshToken, err := parameter(parameters, p.key, "refresh_token")
	if err != nil {
		return nil, err
	}

	token, err := p.oAuthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		log.Error().Err(err).Str("provider", p.key).Msg("Error refreshing OAuth token")
		return nil, fmt.Errorf("failed to refresh %s token: %w", p.key, err)
	}
	if !token.Valid() {
		log.Warn().Str("provider", p.key).Msg("Received invalid OAuth token after refresh")
		return nil, errors.New("received invalid token")
	}
	log.Info().Str("provider", p.key).Int("accessTokenLength", len(token.AccessToken)).Msg("OAuth token obtained successfully")

	return &models.IdentityResult{TokenType: normalizeTokenType(token.Type()), Token: token.AccessToken}, nil
}

func normalizeTokenType(t string) string {
	if t == "Bearer" || t == "bearer" || t == "" {
		return "bearer"
	}
	return t
}
