// Package codec converts the profile collection to and from its persisted
// document form:
//
//	{"profiles":[{"displayName":"...","tileUri":"...","identifiers":[["key","value"],...]}]}
//
// Key order inside an entry is not significant.
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/SimpnicServerTeam/scs-profile-manager/internal/models"
)

// ErrMalformedDocument is returned when the document as a whole cannot be parsed.
var ErrMalformedDocument = errors.New("malformed profile document")

type profileEntry struct {
	DisplayName string      `json:"displayName"`
	TileURI     string      `json:"tileUri"`
	Identifiers [][2]string `json:"identifiers"`
}

type profileDocument struct {
	Profiles []profileEntry `json:"profiles"`
}

// Document is the result of decoding a persisted profile list.
type Document struct {
	Profiles []models.Profile
	// Skipped counts entries dropped because they failed validation.
	Skipped int
}

// Encode serializes profiles in the given order.
func Encode(profiles []models.Profile) ([]byte, error) {
	doc := profileDocument{Profiles: make([]profileEntry, 0, len(profiles))}
	for _, p := range profiles {
		entry := profileEntry{
			DisplayName: p.DisplayName,
			TileURI:     p.TileURI,
			Identifiers: make([][2]string, 0, len(p.Identifiers)),
		}
		for _, id := range p.Identifiers {
			entry.Identifiers = append(entry.Identifiers, [2]string{id.Key, id.Value})
		}
		doc.Profiles = append(doc.Profiles, entry)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile document: %w", err)
	}
	return data, nil
}

// Decode parses a persisted document. Every entry is validated on its own;
// invalid entries are skipped and counted, valid siblings are kept. Only a
// document that is not an object with a "profiles" array yields an error.
func Decode(data []byte) (*Document, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedDocument)
	}

	rawProfiles, ok := root["profiles"]
	if !ok || !isKind(rawProfiles, '[') {
		return nil, fmt.Errorf("%w: missing profiles array", ErrMalformedDocument)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(rawProfiles, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &Document{Profiles: make([]models.Profile, 0, len(entries))}
	for _, raw := range entries {
		p, ok := decodeEntry(raw)
		if !ok {
			doc.Skipped++
			continue
		}
		doc.Profiles = append(doc.Profiles, p)
	}
	return doc, nil
}

func decodeEntry(raw json.RawMessage) (models.Profile, bool) {
	if !isKind(raw, '{') {
		return models.Profile{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Profile{}, false
	}

	displayName, ok := decodeString(fields["displayName"])
	if !ok {
		return models.Profile{}, false
	}
	tileURI, ok := decodeString(fields["tileUri"])
	if !ok {
		return models.Profile{}, false
	}

	rawIdentifiers := fields["identifiers"]
	if !isKind(rawIdentifiers, '[') {
		return models.Profile{}, false
	}
	var pairs []json.RawMessage
	if err := json.Unmarshal(rawIdentifiers, &pairs); err != nil {
		return models.Profile{}, false
	}

	identifiers := make([]models.Identifier, 0, len(pairs))
	for _, rawPair := range pairs {
		id, ok := decodeIdentifier(rawPair)
		if !ok {
			return models.Profile{}, false
		}
		identifiers = append(identifiers, id)
	}

	return models.NewProfile(displayName, tileURI, identifiers...), true
}

func decodeIdentifier(raw json.RawMessage) (models.Identifier, bool) {
	if !isKind(raw, '[') {
		return models.Identifier{}, false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 2 {
		return models.Identifier{}, false
	}
	key, ok := decodeString(parts[0])
	if !ok {
		return models.Identifier{}, false
	}
	value, ok := decodeString(parts[1])
	if !ok {
		return models.Identifier{}, false
	}
	return models.NewIdentifier(key, value), true
}

// decodeString accepts only a JSON string; null, numbers and containers are rejected.
func decodeString(raw json.RawMessage) (string, bool) {
	if !isKind(raw, '"') {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isKind(raw json.RawMessage, first byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == first
}
