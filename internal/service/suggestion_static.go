package service

import (
	"context"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// StaticSuggestionProvider suggests a fixed list of profiles, e.g. from configuration.
type StaticSuggestionProvider struct {
	name     string
	profiles []models.Profile
}

var _ SuggestionProvider = (*StaticSuggestionProvider)(nil)

func NewStaticSuggestionProvider(name string, profiles ...models.Profile) *StaticSuggestionProvider {
	return &StaticSuggestionProvider{name: name, profiles: profiles}
}

func (p *StaticSuggestionProvider) Name() string {
	return p.name
}

func (p *StaticSuggestionProvider) GetProfiles(ctx context.Context, emit func(models.Profile)) error {
	for _, profile := range p.profiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(profile.Clone())
	}
	return nil
}
