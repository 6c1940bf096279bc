package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// JWTAssertionProvider vouches for an identifier by signing a short-lived
// assertion with a secret shared with the auth backend.
type JWTAssertionProvider struct {
	key      string
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

var _ IdentityProvider = (*JWTAssertionProvider)(nil)

// NewJWTAssertionProvider creates a provider for identifiers with the given key.
func NewJWTAssertionProvider(key, secret, issuer, audience string, ttl time.Duration) *JWTAssertionProvider {
	return &JWTAssertionProvider{
		key:      key,
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (p *JWTAssertionProvider) IdentifierKey() string {
	return p.key
}

// TokenType is "<key>_assertion".
func (p *JWTAssertionProvider) TokenType() string {
	return p.key + "_assertion"
}

// ProcessIdentity signs {sub: identifier value, idp: identifier key}.
// Only the first identifier carrying the provider's key is vouched for; a
// profile with several identifiers under one key gets a single assertion.
func (p *JWTAssertionProvider) ProcessIdentity(ctx context.Context, profile models.Profile, parameters map[string]string) (*models.IdentityResult, error) {
	value, ok := identifierValue(profile, p.key)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrIdentifierNotOnFile, p.key)
	}
	if len(p.secret) == 0 {
		return nil, errors.New("assertion signing secret is not configured")
	}

	now := p.now()
	claims := jwt.MapClaims{
		"sub": value,
		"idp": p.key,
		"iss": p.issuer,
		"aud": p.audience,
		"exp": now.Add(p.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign assertion: %w", err)
	}
	return &models.IdentityResult{TokenType: p.TokenType(), Token: signed}, nil
}

// identifierValue returns the value of the first identifier with the given key.
// Later identifiers with the same key are not visible to providers.
func identifierValue(profile models.Profile, key string) (string, bool) {
	for _, id := range profile.Identifiers {
		if id.Key == key {
			return id.Value, true
		}
	}
	return "", false
}

// parameter reads "<key>.<name>" from the caller-supplied parameters.
func parameter(parameters map[string]string, key, name string) (string, error) {
	v := parameters[key+"."+name]
	if v == "" {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingParameter, key, name)
	}
	return v, nil
}
