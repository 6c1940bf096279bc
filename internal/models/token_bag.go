package models

import "maps"

// TokenBag accumulates tokens acquired during a single sign-in attempt, keyed by token type.
// It is never persisted.
type TokenBag struct {
	tokens map[string]string
}

// NewTokenBag creates an empty TokenBag.
func NewTokenBag() *TokenBag {
	return &TokenBag{tokens: make(map[string]string)}
}

// AddToken stores a token; a later token of the same type replaces the earlier one.
func (b *TokenBag) AddToken(tokenType, token string) {
	b.tokens[tokenType] = token
}

// Token returns the token stored for tokenType.
func (b *TokenBag) Token(tokenType string) (string, bool) {
	t, ok := b.tokens[tokenType]
	return t, ok
}

// Len returns the number of stored tokens.
func (b *TokenBag) Len() int {
	return len(b.tokens)
}

// Tokens returns a copy of the stored tokens.
func (b *TokenBag) Tokens() map[string]string {
	return maps.Clone(b.tokens)
}

// Clear drops every stored token.
func (b *TokenBag) Clear() {
	clear(b.tokens)
}
