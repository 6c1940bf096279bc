package models

import "slices"

// Profile is a bundle of third-party identity claims plus display metadata.
type Profile struct {
	DisplayName  string       `json:"displayName"`
	TileURI      string       `json:"tileUri"`
	Identifiers  []Identifier `json:"identifiers"`
	Fingerprint  uint32       `json:"fingerprint"`
	IsSuggestion bool         `json:"isSuggestion"`
}

// NewProfile builds a profile and derives its fingerprint from the identifiers.
func NewProfile(displayName, tileURI string, identifiers ...Identifier) Profile {
	p := Profile{
		DisplayName: displayName,
		TileURI:     tileURI,
		Identifiers: slices.Clone(identifiers),
	}
	p.Fingerprint = Fingerprint(p.Identifiers)
	return p
}

// NumIdentifiers returns the number of identifiers on the profile.
func (p Profile) NumIdentifiers() int {
	return len(p.Identifiers)
}

// ComputeFingerprint recomputes the fingerprint from the current identifiers.
func (p Profile) ComputeFingerprint() uint32 {
	return Fingerprint(p.Identifiers)
}

// Clone returns a deep copy so the identifier slice is never shared.
func (p Profile) Clone() Profile {
	p.Identifiers = slices.Clone(p.Identifiers)
	return p
}
