// Package domain holds primitives shared across the registry API surface.
package domain

import (
	"fmt"
)

// APIVersion names a version of the public registry API. Tokens carry the
// version they were minted for and routes declare the version they serve, so
// both sides of a request can be compared.
type APIVersion string

// APIVersionV1 is the only version the registry currently serves.
const APIVersionV1 APIVersion = "v1"

// versionOrder ranks known versions so newer routes can accept older tokens.
var versionOrder = map[APIVersion]int{
	APIVersionV1: 1,
}

// ParseAPIVersion rejects version strings the registry does not know about.
func ParseAPIVersion(s string) (APIVersion, error) {
	v := APIVersion(s)
	if _, ok := versionOrder[v]; !ok {
		return "", fmt.Errorf("unknown API version: %s", s)
	}
	return v, nil
}

// DefaultVersion is the version assumed for tokens that do not carry one.
func DefaultVersion() APIVersion {
	return APIVersionV1
}

func (v APIVersion) String() string {
	return string(v)
}

// IsNil reports whether no version was set.
func (v APIVersion) IsNil() bool {
	return v == ""
}

// IsAtLeast reports whether v is the same version as other or a newer one.
// A token minted for v1 stays valid on a v2 route, but a v2 token presented
// to a v1 route is rejected. Unknown versions rank below every known one.
func (v APIVersion) IsAtLeast(other APIVersion) bool {
	vRank, vKnown := versionOrder[v]
	otherRank, otherKnown := versionOrder[other]
	if !vKnown {
		return false
	}
	if !otherKnown {
		return true
	}
	return vRank >= otherRank
}
