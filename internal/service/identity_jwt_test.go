package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

const testAssertionSecret = "assertion-secret"

func TestJWTAssertionProvider_ProcessIdentity(t *testing.T) {
	provider := NewJWTAssertionProvider("steam", testAssertionSecret, "scs-profile-manager", "auth-backend", 5*time.Minute)
	profile := models.NewProfile("Player", "", rosID, steamID)

	result, err := provider.ProcessIdentity(context.Background(), profile, nil)
	require.NoError(t, err)
	assert.Equal(t, "steam_assertion", result.TokenType)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testAssertionSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("scs-profile-manager"),
		jwt.WithAudience("auth-backend"),
	)
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "76561197960287930", claims["sub"])
	assert.Equal(t, "steam", claims["idp"])
}

func TestJWTAssertionProvider_FirstIdentifierPerKey(t *testing.T) {
	provider := NewJWTAssertionProvider("steam", testAssertionSecret, "iss", "aud", time.Minute)
	profile := models.NewProfile("Player", "",
		models.NewIdentifier("steam", "1"),
		models.NewIdentifier("steam", "2"),
	)

	result, err := provider.ProcessIdentity(context.Background(), profile, nil)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testAssertionSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
}

func TestJWTAssertionProvider_Expiry(t *testing.T) {
	provider := NewJWTAssertionProvider("steam", testAssertionSecret, "iss", "aud", time.Minute)
	provider.now = func() time.Time { return time.Now().Add(-time.Hour) }

	result, err := provider.ProcessIdentity(context.Background(), models.NewProfile("Player", "", steamID), nil)
	require.NoError(t, err)

	_, err = jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testAssertionSecret), nil
	})
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTAssertionProvider_Errors(t *testing.T) {
	t.Run("IdentifierNotOnFile", func(t *testing.T) {
		provider := NewJWTAssertionProvider("discord", testAssertionSecret, "iss", "aud", time.Minute)
		result, err := provider.ProcessIdentity(context.Background(), models.NewProfile("Player", "", steamID), nil)
		assert.ErrorIs(t, err, ErrIdentifierNotOnFile)
		assert.Nil(t, result)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		provider := NewJWTAssertionProvider("steam", "", "iss", "aud", time.Minute)
		result, err := provider.ProcessIdentity(context.Background(), models.NewProfile("Player", "", steamID), nil)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
