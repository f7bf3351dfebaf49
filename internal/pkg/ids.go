package pkg

import "github.com/google/uuid"

// GenerateNewSessionID - generates a new unique session ID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// IsValidSessionID reports whether id was produced by GenerateNewSessionID.
func IsValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
