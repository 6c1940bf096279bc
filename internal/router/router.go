package router

import (
	"github.com/labstack/echo/v4"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/handlers"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/middleware"
)

func SetupProfileRoutes(app *echo.Echo, profileHandler *handlers.ProfileHandler, jwtSecret string) {
	api := app.Group("/api/profiles", middleware.RequireJWT(jwtSecret))

	api.GET("", profileHandler.ListProfiles)
	api.GET("/primary", profileHandler.GetPrimaryProfile)
	api.GET("/:fingerprint", profileHandler.GetProfile)
	api.POST("/:fingerprint/promote", profileHandler.PromoteProfile)
	api.POST("/:fingerprint/primary", profileHandler.SetPrimaryProfile)
	api.POST("/:fingerprint/sign-in", profileHandler.SignIn) // Body: {"parameters":{...}}
}
