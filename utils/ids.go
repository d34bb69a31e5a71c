package utils

import "github.com/google/uuid"

// GetUUID returns a random v4 UUID string, used for request and event ids.
func GetUUID() string {
	return uuid.NewString()
}
