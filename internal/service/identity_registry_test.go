package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/mocks"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

func TestIdentityProviderRegistry(t *testing.T) {
	steam := mocks.NewMockIdentityProvider("steam")
	ros := mocks.NewMockIdentityProvider("ros")
	registry := NewIdentityProviderRegistry(steam, ros)

	got, ok := registry.Get("steam")
	require.True(t, ok)
	assert.Same(t, steam, got)

	_, ok = registry.Get("discord")
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"steam", "ros"}, registry.Keys())

	replacement := mocks.NewMockIdentityProvider("steam")
	registry.Register(replacement)
	got, _ = registry.Get("steam")
	assert.Same(t, replacement, got)
	assert.Len(t, registry.Keys(), 2)
}

func TestStaticSuggestionProvider(t *testing.T) {
	suggested := models.NewProfile("Player", "https://tiles.test/p.png", steamID)
	provider := NewStaticSuggestionProvider("config", suggested)
	assert.Equal(t, "config", provider.Name())

	var emitted []models.Profile
	err := provider.GetProfiles(context.Background(), func(p models.Profile) {
		p.Identifiers[0].Value = "mutated"
		emitted = append(emitted, p)
	})
	require.NoError(t, err)
	require.Len(t, emitted, 1)

	// emitted profiles are copies
	emitted = nil
	require.NoError(t, provider.GetProfiles(context.Background(), func(p models.Profile) { emitted = append(emitted, p) }))
	assert.Equal(t, steamID, emitted[0].Identifiers[0])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, provider.GetProfiles(ctx, func(models.Profile) {}), context.Canceled)
}
