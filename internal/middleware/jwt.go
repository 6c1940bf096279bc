package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// UserContextKey is where the validated *jwt.Token is stored on the echo context.
const UserContextKey = "user"

// RequireJWT validates the HS256 bearer token on every request and rejects
// tokens without a subject. Handlers can read the subject with Subject.
func RequireJWT(secret string) echo.MiddlewareFunc {
	validate := echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    UserContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			log.Warn().Err(err).Str("path", c.Path()).Msg("Rejected request with invalid bearer token")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return validate(func(c echo.Context) error {
			if Subject(c) == "" {
				log.Warn().Str("path", c.Path()).Msg("Bearer token has no subject")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token: subject claim is missing or empty")
			}
			return next(c)
		})
	}
}

// Subject returns the subject of the validated token, or "" if there is none.
func Subject(c echo.Context) string {
	token, ok := c.Get(UserContextKey).(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
