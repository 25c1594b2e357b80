package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRandomID generates a random hex ID of the given length
func GenerateRandomID(length int) string {
	bytes := make([]byte, (length+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)[:length]
}

// NewConfirmationID returns the identifier handed back to a submitter.
func NewConfirmationID() string {
	return uuid.NewString()
}

// ValidateSessionID reports whether a browser session id is usable as a
// storage key: non-empty, at most 128 chars, no whitespace or ':'.
func ValidateSessionID(sessionID string) bool {
	if sessionID == "" || len(sessionID) > 128 {
		return false
	}
	return !strings.ContainsAny(sessionID, " \t\r\n:")
}
