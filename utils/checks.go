package utils

import (
	"strings"

	"github.com/google/uuid"
)

// CanonicalUID is the one identity key used across rooms, profiles and friend
// links: the external id with surrounding whitespace removed.
func CanonicalUID(uid string) string {
	return strings.TrimSpace(uid)
}

// IsInternalRoomID reports whether identifier has the shape of a room's
// internal id rather than a custom room code.
func IsInternalRoomID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}

// NormalizeRoomIdentifier trims an id or code received from a client.
func NormalizeRoomIdentifier(identifier string) string {
	return strings.TrimSpace(identifier)
}
