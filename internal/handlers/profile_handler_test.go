package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/handlers"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/mocks"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/service"
)

type profileHandlerTestDeps struct {
	store   *mocks.MockProfileStore
	signIn  *mocks.MockSignInService
	handler *handlers.ProfileHandler
	echo    *echo.Echo
}

func setupProfileHandlerTest(t *testing.T) profileHandlerTestDeps {
	t.Helper()
	deps := profileHandlerTestDeps{
		store:  new(mocks.MockProfileStore),
		signIn: new(mocks.MockSignInService),
	}
	deps.handler = handlers.NewProfileHandler(deps.store, deps.signIn)
	deps.echo = echo.New()
	// Register routes directly; the JWT middleware is covered by its own tests
	deps.echo.GET("/profiles", deps.handler.ListProfiles)
	deps.echo.GET("/profiles/primary", deps.handler.GetPrimaryProfile)
	deps.echo.GET("/profiles/:fingerprint", deps.handler.GetProfile)
	deps.echo.POST("/profiles/:fingerprint/promote", deps.handler.PromoteProfile)
	deps.echo.POST("/profiles/:fingerprint/primary", deps.handler.SetPrimaryProfile)
	deps.echo.POST("/profiles/:fingerprint/sign-in", deps.handler.SignIn)
	return deps
}

func performRequest(e *echo.Echo, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

var (
	player = models.NewProfile("Player", "https://tiles.test/p.png",
		models.NewIdentifier("steam", "76561197960287930"))
	alt = func() models.Profile {
		p := models.NewProfile("Alt", "", models.NewIdentifier("ros", "1234"))
		p.IsSuggestion = true
		return p
	}()
)

func fpPath(format string, fp uint32) string {
	return strings.Replace(format, ":fp", strconv.FormatUint(uint64(fp), 10), 1)
}

func TestProfileHandler_ListProfiles(t *testing.T) {
	deps := setupProfileHandlerTest(t)
	deps.store.On("PrimaryProfile").Return(alt.Fingerprint, true).Once()
	deps.store.On("Profiles").Return([]models.Profile{player, alt}).Once()

	rec := performRequest(deps.echo, http.MethodGet, "/profiles", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ListProfilesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Profiles, 2)
	assert.Equal(t, 0, resp.Profiles[0].Index)
	assert.Equal(t, "Player", resp.Profiles[0].DisplayName)
	assert.Equal(t, player.Fingerprint, resp.Profiles[0].Fingerprint)
	assert.False(t, resp.Profiles[0].IsPrimary)
	assert.Equal(t, []models.IdentifierDTO{{Key: "steam", Value: "76561197960287930"}}, resp.Profiles[0].Identifiers)
	assert.True(t, resp.Profiles[1].IsSuggestion)
	assert.True(t, resp.Profiles[1].IsPrimary)
	deps.store.AssertExpectations(t)
}

func TestProfileHandler_GetProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("PrimaryProfile").Return(uint32(0), false).Once()
		deps.store.On("Profiles").Return([]models.Profile{player, alt}).Once()

		rec := performRequest(deps.echo, http.MethodGet, fpPath("/profiles/:fp", alt.Fingerprint), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp models.ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Index)
		assert.Equal(t, "Alt", resp.DisplayName)
	})

	t.Run("NotFound", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("PrimaryProfile").Return(uint32(0), false).Once()
		deps.store.On("Profiles").Return([]models.Profile{player}).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/profiles/42", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("InvalidFingerprint", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		for _, path := range []string{"/profiles/abc", "/profiles/-1", "/profiles/4294967296"} {
			rec := performRequest(deps.echo, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		}
		deps.store.AssertNotCalled(t, "Profiles")
	})
}

func TestProfileHandler_GetPrimaryProfile(t *testing.T) {
	t.Run("NoPrimary", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("PrimaryProfile").Return(uint32(0), false).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/profiles/primary", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Success", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("PrimaryProfile").Return(player.Fingerprint, true)
		deps.store.On("Profiles").Return([]models.Profile{player}).Once()

		rec := performRequest(deps.echo, http.MethodGet, "/profiles/primary", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp models.ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.IsPrimary)
	})
}

func TestProfileHandler_PromoteProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		promoted := alt.Clone()
		promoted.IsSuggestion = false
		deps.store.On("Promote", alt.Fingerprint).Return(nil).Once()
		deps.store.On("Save", mock.Anything).Return(nil).Once()
		deps.store.On("PrimaryProfile").Return(uint32(0), false).Once()
		deps.store.On("Profiles").Return([]models.Profile{player, promoted}).Once()

		rec := performRequest(deps.echo, http.MethodPost, fpPath("/profiles/:fp/promote", alt.Fingerprint), nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp models.ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.IsSuggestion)
		deps.store.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("Promote", uint32(7)).Return(service.ErrProfileNotFound).Once()

		rec := performRequest(deps.echo, http.MethodPost, "/profiles/7/promote", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		deps.store.AssertNotCalled(t, "Save", mock.Anything)
	})

	t.Run("SaveFailure", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("Promote", alt.Fingerprint).Return(nil).Once()
		deps.store.On("Save", mock.Anything).Return(assert.AnError).Once()

		rec := performRequest(deps.echo, http.MethodPost, fpPath("/profiles/:fp/promote", alt.Fingerprint), nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestProfileHandler_SetPrimaryProfile(t *testing.T) {
	deps := setupProfileHandlerTest(t)
	deps.store.On("SetPrimaryProfile", player.Fingerprint).Return(nil).Once()
	deps.store.On("PrimaryProfile").Return(player.Fingerprint, true).Once()
	deps.store.On("Profiles").Return([]models.Profile{player}).Once()

	rec := performRequest(deps.echo, http.MethodPost, fpPath("/profiles/:fp/primary", player.Fingerprint), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deps.store.AssertExpectations(t)

	deps.store.On("SetPrimaryProfile", uint32(9)).Return(service.ErrProfileNotFound).Once()
	rec = performRequest(deps.echo, http.MethodPost, "/profiles/9/primary", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileHandler_SignIn(t *testing.T) {
	params := map[string]string{"live.refresh_token": "stored-refresh"}
	body := `{"parameters":{"live.refresh_token":"stored-refresh"}}`

	t.Run("Success", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("ProfileByFingerprint", player.Fingerprint).Return(player, nil).Once()
		deps.signIn.On("SignIn", mock.Anything, player.Fingerprint, params).
			Return(models.SignInResult{AttemptID: "attempt-1", Fingerprint: player.Fingerprint, Success: true}).Once()

		rec := performRequest(deps.echo, http.MethodPost, fpPath("/profiles/:fp/sign-in", player.Fingerprint), strings.NewReader(body))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp models.SignInResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "attempt-1", resp.AttemptID)
		deps.signIn.AssertExpectations(t)
	})

	t.Run("Failure", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("ProfileByFingerprint", player.Fingerprint).Return(player, nil).Once()
		deps.signIn.On("SignIn", mock.Anything, player.Fingerprint, params).
			Return(models.SignInResult{AttemptID: "attempt-2", Fingerprint: player.Fingerprint, Message: "connect error: 503"}).Once()

		rec := performRequest(deps.echo, http.MethodPost, fpPath("/profiles/:fp/sign-in", player.Fingerprint), strings.NewReader(body))

		require.Equal(t, http.StatusBadGateway, rec.Code)
		var resp models.SignInResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "connect error: 503", resp.Message)
	})

	t.Run("UnknownProfile", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)
		deps.store.On("ProfileByFingerprint", uint32(5)).Return(models.Profile{}, service.ErrProfileNotFound).Once()

		rec := performRequest(deps.echo, http.MethodPost, "/profiles/5/sign-in", strings.NewReader(body))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		deps.signIn.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		deps := setupProfileHandlerTest(t)

		rec := performRequest(deps.echo, http.MethodPost, fpPath("/profiles/:fp/sign-in", player.Fingerprint), strings.NewReader(`{"parameters":`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		deps.signIn.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
	})
}
