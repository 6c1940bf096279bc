package models

// IdentifierDTO is the wire form of an identifier on the host API.
type IdentifierDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProfileResponse is a profile as exposed by the host API.
type ProfileResponse struct {
	Index        int             `json:"index"`
	Fingerprint  uint32          `json:"fingerprint"`
	DisplayName  string          `json:"displayName"`
	TileURI      string          `json:"tileUri"`
	Identifiers  []IdentifierDTO `json:"identifiers"`
	IsSuggestion bool            `json:"isSuggestion"`
	IsPrimary    bool            `json:"isPrimary"`
}

type ListProfilesResponse struct {
	Profiles []ProfileResponse `json:"profiles"`
}

// SignInRequest carries caller-supplied parameters forwarded to identity providers.
type SignInRequest struct {
	Parameters map[string]string `json:"parameters"`
}

type SignInResponse struct {
	AttemptID   string `json:"attemptId"`
	Fingerprint uint32 `json:"fingerprint"`
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
}

// ErrorResponse standard error format
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewProfileResponse converts a profile into its API form.
func NewProfileResponse(index int, p Profile, primary bool) ProfileResponse {
	ids := make([]IdentifierDTO, 0, len(p.Identifiers))
	for _, id := range p.Identifiers {
		ids = append(ids, IdentifierDTO{Key: id.Key, Value: id.Value})
	}
	return ProfileResponse{
		Index:        index,
		Fingerprint:  p.Fingerprint,
		DisplayName:  p.DisplayName,
		TileURI:      p.TileURI,
		Identifiers:  ids,
		IsSuggestion: p.IsSuggestion,
		IsPrimary:    primary,
	}
}
