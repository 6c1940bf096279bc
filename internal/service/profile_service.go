package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/codec"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/protect"
	"github.com/SimpnicServerTeam/scs-profile-manager/internal/repository"
)

// ProfileService owns the profile collection. Profiles are indexed by
// fingerprint and enumerated in discovery order. All mutations go through
// one lock; readers only ever receive copies.
type ProfileService struct {
	blobRepo  repository.ProfileBlobRepository
	protector protect.Protector

	mutex       deadlock.RWMutex
	profiles    map[uint32]*models.Profile
	order       []uint32
	primary     uint32
	hasPrimary  bool
	initialized bool

	suggestionProviders []SuggestionProvider

	// saveMutex orders writes so the last snapshot taken is the last one written.
	saveMutex deadlock.Mutex
}

var _ ProfileStore = (*ProfileService)(nil)

// NewProfileService creates an empty store. Register suggestion providers,
// then call Initialize.
func NewProfileService(blobRepo repository.ProfileBlobRepository, protector protect.Protector) *ProfileService {
	return &ProfileService{
		blobRepo:  blobRepo,
		protector: protector,
		profiles:  make(map[uint32]*models.Profile),
	}
}

// RegisterSuggestionProvider adds a provider consulted by Initialize.
func (s *ProfileService) RegisterSuggestionProvider(p SuggestionProvider) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.initialized {
		return fmt.Errorf("cannot register suggestion provider %q: %w", p.Name(), ErrAlreadyInitialized)
	}
	s.suggestionProviders = append(s.suggestionProviders, p)
	return nil
}

// Initialize loads the persisted profiles and then ingests every suggestion
// provider's candidates. Neither an unreadable store nor a failing provider
// aborts startup; both are logged.
func (s *ProfileService) Initialize(ctx context.Context) error {
	s.mutex.Lock()
	if s.initialized {
		s.mutex.Unlock()
		return ErrAlreadyInitialized
	}
	s.initialized = true
	providers := append([]SuggestionProvider(nil), s.suggestionProviders...)
	s.mutex.Unlock()

	if err := s.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Starting with an empty profile store")
	}

	for _, p := range providers {
		err := p.GetProfiles(ctx, func(candidate models.Profile) {
			if _, _, err := s.IngestSuggestion(candidate); err != nil {
				log.Warn().Err(err).Str("provider", p.Name()).Msg("Skipping suggested profile")
			}
		})
		if err != nil {
			log.Error().Err(err).Str("provider", p.Name()).Msg("Suggestion provider failed")
			continue
		}
	}

	log.Info().Int("profiles", s.Count()).Int("suggestionProviders", len(providers)).Msg("Profile service initialized")
	return nil
}

// Load replaces the collection with the persisted one. A missing blob yields
// an empty store without error. An unreadable blob (decrypt or parse failure)
// also yields an empty store, and is reported as ErrProfilesUnreadable.
// Malformed entries are skipped individually.
func (s *ProfileService) Load(ctx context.Context) error {
	s.reset()

	blob, err := s.blobRepo.ReadProfileBlob(ctx)
	if errors.Is(err, repository.ErrProfileBlobNotFound) {
		log.Debug().Msg("No stored profiles found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProfilesUnreadable, err)
	}

	plaintext, err := s.protector.Unprotect(blob)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProfilesUnreadable, err)
	}

	doc, err := codec.Decode(plaintext)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProfilesUnreadable, err)
	}
	if doc.Skipped > 0 {
		log.Warn().Int("skipped", doc.Skipped).Msg("Skipped malformed stored profiles")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, p := range doc.Profiles {
		s.insertLocked(p)
	}
	log.Debug().Int("profiles", len(s.order)).Msg("Loaded stored profiles")
	return nil
}

// Save encodes the whole collection in enumeration order, protects it and
// writes it to the blob repository.
func (s *ProfileService) Save(ctx context.Context) error {
	s.saveMutex.Lock()
	defer s.saveMutex.Unlock()

	data, err := codec.Encode(s.Profiles())
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	sealed, err := s.protector.Protect(data)
	if err != nil {
		return fmt.Errorf("failed to protect profiles: %w", err)
	}
	if err := s.blobRepo.WriteProfileBlob(ctx, sealed); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

// IngestSuggestion merges a suggested candidate into the store. The first
// stored profile (in enumeration order) sharing any identifier with the
// candidate takes over the candidate's display name and tile; its identifiers
// and suggestion flag stay as they are. Otherwise the candidate is appended
// as a new suggestion. It returns the fingerprint of the affected profile
// and whether the candidate was merged.
func (s *ProfileService) IngestSuggestion(candidate models.Profile) (uint32, bool, error) {
	if err := validateCandidate(candidate); err != nil {
		return 0, false, err
	}
	candidate = candidate.Clone()
	candidate.Fingerprint = candidate.ComputeFingerprint()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if match := s.findMatchLocked(candidate.Identifiers); match != nil {
		match.DisplayName = candidate.DisplayName
		match.TileURI = candidate.TileURI
		log.Debug().Uint32("fingerprint", match.Fingerprint).Msg("Merged suggested profile into existing profile")
		return match.Fingerprint, true, nil
	}

	candidate.IsSuggestion = true
	s.insertLocked(candidate)
	log.Debug().Uint32("fingerprint", candidate.Fingerprint).Msg("Added suggested profile")
	return candidate.Fingerprint, false, nil
}

// AddProfile inserts a profile created by explicit user action.
func (s *ProfileService) AddProfile(p models.Profile) (uint32, error) {
	if err := validateCandidate(p); err != nil {
		return 0, err
	}
	p = p.Clone()
	p.Fingerprint = p.ComputeFingerprint()
	p.IsSuggestion = false

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.profiles[p.Fingerprint]; exists {
		return 0, fmt.Errorf("fingerprint %d: %w", p.Fingerprint, ErrProfileExists)
	}
	s.insertLocked(p)
	return p.Fingerprint, nil
}

// Promote marks a suggested profile as accepted by the user.
func (s *ProfileService) Promote(fingerprint uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	p, ok := s.profiles[fingerprint]
	if !ok {
		return ErrProfileNotFound
	}
	p.IsSuggestion = false
	return nil
}

// SetPrimaryProfile records which profile the user signs in with by default.
func (s *ProfileService) SetPrimaryProfile(fingerprint uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, ok := s.profiles[fingerprint]; !ok {
		return ErrProfileNotFound
	}
	s.primary = fingerprint
	s.hasPrimary = true
	return nil
}

// PrimaryProfile returns the primary profile's fingerprint, if one is set.
func (s *ProfileService) PrimaryProfile() (uint32, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.primary, s.hasPrimary
}

// Count returns the number of profiles.
func (s *ProfileService) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.order)
}

// ProfileAt returns the profile at position index in discovery order.
func (s *ProfileService) ProfileAt(index int) (models.Profile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if index < 0 || index >= len(s.order) {
		return models.Profile{}, fmt.Errorf("index %d: %w", index, ErrIndexOutOfRange)
	}
	return s.profiles[s.order[index]].Clone(), nil
}

// ProfileByFingerprint returns the profile stored under fingerprint.
func (s *ProfileService) ProfileByFingerprint(fingerprint uint32) (models.Profile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	p, ok := s.profiles[fingerprint]
	if !ok {
		return models.Profile{}, ErrProfileNotFound
	}
	return p.Clone(), nil
}

// Profiles returns copies of all profiles in discovery order.
func (s *ProfileService) Profiles() []models.Profile {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]models.Profile, 0, len(s.order))
	for _, fp := range s.order {
		out = append(out, s.profiles[fp].Clone())
	}
	return out
}

func (s *ProfileService) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.profiles = make(map[uint32]*models.Profile)
	s.order = nil
	s.primary = 0
	s.hasPrimary = false
}

// insertLocked stores p under its fingerprint. An existing entry with the same
// fingerprint is replaced in place and keeps its position.
func (s *ProfileService) insertLocked(p models.Profile) {
	stored := p.Clone()
	if _, exists := s.profiles[p.Fingerprint]; !exists {
		s.order = append(s.order, p.Fingerprint)
	}
	s.profiles[p.Fingerprint] = &stored
}

func (s *ProfileService) findMatchLocked(identifiers []models.Identifier) *models.Profile {
	for _, fp := range s.order {
		existing := s.profiles[fp]
		if models.ContainsIdentifier(existing.Identifiers, identifiers) {
			return existing
		}
	}
	return nil
}

func validateCandidate(p models.Profile) error {
	if len(p.Identifiers) == 0 {
		return fmt.Errorf("%w: no identifiers", ErrMalformedProfile)
	}
	for _, id := range p.Identifiers {
		if id.Key == "" {
			return fmt.Errorf("%w: identifier with empty key", ErrMalformedProfile)
		}
	}
	return nil
}
