// internal/types/interfaces.go
package types

import (
	"context"
	"io"
)

// Storage is a flat key/value namespace holding one document per key.
// Implementations perform I/O on every call and hold no cache.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	// Delete removes key. Deleting an absent key is an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, source Actor) (SessionID, error)
	GetSession(ctx context.Context, id SessionID) (*Session, bool)
	UpdateSession(ctx context.Context, id SessionID, update SessionUpdate) error
	AddDecision(ctx context.Context, id SessionID, d NewDecision) (DecisionID, error)
	AddArtifact(ctx context.Context, id SessionID, a NewArtifact) (ArtifactID, error)
	AddHistoryEntry(ctx context.Context, id SessionID, e NewHistoryEntry) error
	GetArtifactsByType(ctx context.Context, id SessionID, t ArtifactType) []Artifact
	GetDecisionsByImpact(ctx context.Context, id SessionID, impact Impact) []Decision
	ListActiveSessions(ctx context.Context) ([]SessionID, error)
	DeleteSession(ctx context.Context, id SessionID) error
	ExportTo(ctx context.Context, id SessionID, w io.Writer) error
	ImportFrom(ctx context.Context, r io.Reader) (SessionID, error)
}
