package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/middleware"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/service"
)

// ProfileHandler exposes the profile store and sign-in to the host application.
type ProfileHandler struct {
	ProfileStore  service.ProfileStore
	SignInService service.SignInGenerator
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(store service.ProfileStore, signIn service.SignInGenerator) *ProfileHandler {
	return &ProfileHandler{
		ProfileStore:  store,
		SignInService: signIn,
	}
}

// ListProfiles returns every profile in enumeration order.
func (h *ProfileHandler) ListProfiles(c echo.Context) error {
	primary, hasPrimary := h.ProfileStore.PrimaryProfile()

	profiles := h.ProfileStore.Profiles()
	resp := models.ListProfilesResponse{Profiles: make([]models.ProfileResponse, 0, len(profiles))}
	for i, p := range profiles {
		resp.Profiles = append(resp.Profiles, models.NewProfileResponse(i, p, hasPrimary && p.Fingerprint == primary))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	fingerprint, err := fingerprintParam(c)
	if err != nil {
		return err
	}
	return h.respondWithProfile(c, fingerprint)
}

// GetPrimaryProfile returns the primary profile, 404 if none is set.
func (h *ProfileHandler) GetPrimaryProfile(c echo.Context) error {
	fingerprint, ok := h.ProfileStore.PrimaryProfile()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "No primary profile set")
	}
	return h.respondWithProfile(c, fingerprint)
}

// PromoteProfile accepts a suggested profile and persists the store.
func (h *ProfileHandler) PromoteProfile(c echo.Context) error {
	fingerprint, err := fingerprintParam(c)
	if err != nil {
		return err
	}

	if err := h.ProfileStore.Promote(fingerprint); err != nil {
		return profileError(err)
	}
	if err := h.ProfileStore.Save(c.Request().Context()); err != nil {
		log.Error().Err(err).Uint32("fingerprint", fingerprint).Msg("Failed to save profiles after promotion")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save profiles")
	}
	log.Info().Uint32("fingerprint", fingerprint).Str("subject", middleware.Subject(c)).Msg("Profile promoted")
	return h.respondWithProfile(c, fingerprint)
}

func (h *ProfileHandler) SetPrimaryProfile(c echo.Context) error {
	fingerprint, err := fingerprintParam(c)
	if err != nil {
		return err
	}
	if err := h.ProfileStore.SetPrimaryProfile(fingerprint); err != nil {
		return profileError(err)
	}
	return h.respondWithProfile(c, fingerprint)
}

// SignIn runs a sign-in attempt for the profile. Failed attempts answer 502
// with the failure message in the body.
func (h *ProfileHandler) SignIn(c echo.Context) error {
	fingerprint, err := fingerprintParam(c)
	if err != nil {
		return err
	}

	var req models.SignInRequest
	if err := c.Bind(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind sign-in request")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if _, err := h.ProfileStore.ProfileByFingerprint(fingerprint); err != nil {
		return profileError(err)
	}

	result := h.SignInService.SignIn(c.Request().Context(), fingerprint, req.Parameters)
	resp := models.SignInResponse{
		AttemptID:   result.AttemptID,
		Fingerprint: result.Fingerprint,
		Success:     result.Success,
		Message:     result.Message,
	}
	if !result.Success {
		return c.JSON(http.StatusBadGateway, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) respondWithProfile(c echo.Context, fingerprint uint32) error {
	primary, hasPrimary := h.ProfileStore.PrimaryProfile()
	for i, p := range h.ProfileStore.Profiles() {
		if p.Fingerprint == fingerprint {
			return c.JSON(http.StatusOK, models.NewProfileResponse(i, p, hasPrimary && primary == fingerprint))
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
}

func fingerprintParam(c echo.Context) (uint32, error) {
	fp, err := strconv.ParseUint(c.Param("fingerprint"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid profile fingerprint")
	}
	return uint32(fp), nil
}

func profileError(err error) error {
	if errors.Is(err, service.ErrProfileNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}
	log.Error().Err(err).Msg("Profile store error")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
