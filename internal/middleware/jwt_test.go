package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "host-api-secret"

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func setupJWTTest() *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, Subject(c))
	}, RequireJWT(testSecret))
	return e
}

func performRequest(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireJWT(t *testing.T) {
	e := setupJWTTest()

	t.Run("Success", func(t *testing.T) {
		rec := performRequest(e, signToken(t, testSecret, "launcher", time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "launcher", rec.Body.String())
	})

	t.Run("MissingToken", func(t *testing.T) {
		rec := performRequest(e, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		rec := performRequest(e, signToken(t, "other-secret", "launcher", time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Expired", func(t *testing.T) {
		rec := performRequest(e, signToken(t, testSecret, "launcher", time.Now().Add(-time.Minute)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		rec := performRequest(e, signToken(t, testSecret, "", time.Now().Add(time.Hour)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "subject claim is missing")
	})
}
