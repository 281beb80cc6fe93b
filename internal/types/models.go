// internal/types/models.go
package types

import (
	"fmt"
	"time"
)

// Session is the shared working context of one collaboration. Decisions,
// Artifacts and History are append-only.
type Session struct {
	SessionID   SessionID      `json:"sessionId"`
	CreatedAt   time.Time      `json:"createdAt"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Source      Actor          `json:"source"`
	TaskType    string         `json:"taskType,omitempty"`
	CurrentGoal string         `json:"currentGoal,omitempty"`
	Decisions   []Decision     `json:"decisions"`
	Artifacts   []Artifact     `json:"artifacts"`
	History     []HistoryEntry `json:"history"`
}

type Decision struct {
	ID          DecisionID `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Description string     `json:"description"`
	Rationale   string     `json:"rationale"`
	MadeBy      Actor      `json:"madeBy"`
	Impact      Impact     `json:"impact"`
}

// Content and Metadata are opaque to the store.
type Artifact struct {
	ID        ArtifactID     `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	CreatedBy Actor          `json:"createdBy"`
	Type      ArtifactType   `json:"type"`
	Content   any            `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     Actor     `json:"actor"`
	Action    string    `json:"action"`
	Details   any       `json:"details,omitempty"`
}

// NewDecision is a decision before the store assigns its id and timestamp.
type NewDecision struct {
	Description string
	Rationale   string
	MadeBy      Actor
	Impact      Impact
}

// NewArtifact is an artifact before the store assigns its id and timestamp.
type NewArtifact struct {
	CreatedBy Actor
	Type      ArtifactType
	Content   any
	Metadata  map[string]any
}

// NewHistoryEntry is a history entry before the store stamps it.
type NewHistoryEntry struct {
	Actor   Actor
	Action  string
	Details any
}

// SessionUpdate holds the fields UpdateSession may overwrite. Nil fields are
// left untouched.
type SessionUpdate struct {
	Source      *Actor
	TaskType    *string
	CurrentGoal *string
}

// Validate reports the first closed-set field that is missing or unknown.
// A decoded document that fails Validate cannot be read back by a store.
func (s *Session) Validate() error {
	if !s.Source.Valid() {
		return fmt.Errorf("invalid source %q", s.Source)
	}
	for i, d := range s.Decisions {
		if !d.MadeBy.Valid() {
			return fmt.Errorf("decision %d: invalid actor %q", i, d.MadeBy)
		}
		if !d.Impact.Valid() {
			return fmt.Errorf("decision %d: invalid impact %q", i, d.Impact)
		}
	}
	for i, a := range s.Artifacts {
		if !a.CreatedBy.Valid() {
			return fmt.Errorf("artifact %d: invalid actor %q", i, a.CreatedBy)
		}
		if !a.Type.Valid() {
			return fmt.Errorf("artifact %d: invalid type %q", i, a.Type)
		}
	}
	for i, h := range s.History {
		if !h.Actor.Valid() {
			return fmt.Errorf("history %d: invalid actor %q", i, h.Actor)
		}
	}
	return nil
}

// SessionSummary is a lightweight listing row for a session.
type SessionSummary struct {
	SessionID   SessionID `json:"sessionId"`
	Source      Actor     `json:"source"`
	TaskType    string    `json:"taskType,omitempty"`
	CurrentGoal string    `json:"currentGoal,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
	Decisions   int       `json:"decisions"`
	Artifacts   int       `json:"artifacts"`
	History     int       `json:"history"`
}

// History actions written by the store itself.
const (
	ActionSessionCreated = "session_created"
	ActionDecisionAdded  = "decision_added"
	ActionArtifactAdded  = "artifact_added"
)
