package utils

/**
 * Key formatters for the Redis caches, so every reader and writer agrees on
 * the key layout.
 */

import "fmt"

// FormatRoomKey indexes a room snapshot by id or by custom code.
func FormatRoomKey(identifier string) string {
	return fmt.Sprintf("room:%s", identifier)
}

func FormatProfileKey(uid string) string {
	return fmt.Sprintf("profile:%s", uid)
}
