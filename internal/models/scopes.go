package models

import (
	"slices"
	"strings"
)

// Well-known scopes
const (
	ScopeOpenID       = "openid"
	ScopeProfile      = "profile"
	ScopeEmail        = "email"
	ScopeReadUsers    = "read:users"
	ScopeReadProducts = "read:products"
)

// Scopes is an ordered set of distinct scope strings.
// It is only flattened to a space-separated string at the wire boundary.
type Scopes []string

// ParseScopes splits a space-separated scope string, dropping duplicates
// and empty entries while keeping first-seen order.
func ParseScopes(raw string) Scopes {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	out := make(Scopes, 0, len(fields))
	for _, f := range fields {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// String joins the scopes with single spaces.
func (s Scopes) String() string {
	return strings.Join(s, " ")
}

// Has reports whether scope is present.
func (s Scopes) Has(scope string) bool {
	return slices.Contains(s, scope)
}

// Intersect returns the scopes of s that are also in allowed, in s order.
func (s Scopes) Intersect(allowed Scopes) Scopes {
	var out Scopes
	for _, scope := range s {
		if allowed.Has(scope) && !out.Has(scope) {
			out = append(out, scope)
		}
	}
	return out
}

// Missing returns the scopes of required that are absent from s.
func (s Scopes) Missing(required ...string) []string {
	var missing []string
	for _, r := range required {
		if !s.Has(r) {
			missing = append(missing, r)
		}
	}
	return missing
}

// Clone returns an independent copy.
func (s Scopes) Clone() Scopes {
	return slices.Clone(s)
}
