// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

type SessionID string
type DecisionID string
type ArtifactID string

const sessionKeyPrefix = "session-"

func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func NewDecisionID() DecisionID {
	return DecisionID(uuid.New().String())
}

func NewArtifactID() ArtifactID {
	return ArtifactID(uuid.New().String())
}

// SessionKey returns the storage key for a session.
func SessionKey(id SessionID) string {
	return sessionKeyPrefix + string(id)
}

// ParseSessionKey reverses SessionKey. ok is false for keys that do not
// belong to a session.
func ParseSessionKey(key string) (SessionID, bool) {
	rest, ok := strings.CutPrefix(key, sessionKeyPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return SessionID(rest), true
}
