// internal/state/session.go
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/user/sharedctx/internal/types"
)

// SessionStore keeps one JSON document per session in a Storage.
//
// Every mutating operation reads the whole aggregate, applies its change and
// writes the whole aggregate back. Nothing is cached between calls. Without
// WithLocking, two concurrent mutations of the same session race and the later
// write silently drops the earlier one; callers are expected to keep a single
// writer per session.
type SessionStore struct {
	storage types.Storage
	now     func() time.Time
	locks   *sessionLocks
}

var _ types.SessionStore = (*SessionStore)(nil)

// Option configures a SessionStore.
type Option func(*SessionStore)

// WithLocking serializes read-modify-write cycles on the same session id
// within this process. It does not coordinate separate processes.
func WithLocking() Option {
	return func(s *SessionStore) { s.locks = newSessionLocks() }
}

// WithClock replaces time.Now as the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates a SessionStore over the given storage.
func NewSessionStore(storage types.Storage, opts ...Option) *SessionStore {
	s := &SessionStore{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load reads and decodes a session. Absent keys map to ErrNotFound.
func (s *SessionStore) load(ctx context.Context, id types.SessionID) (*types.Session, error) {
	data, err := s.storage.Get(ctx, types.SessionKey(id))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrInvalid) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	session, err := decodeSession(data)
	if err != nil {
		return nil, fmt.Errorf("%w: session %s: %v", ErrDecode, id, err)
	}
	return session, nil
}

// decodeSession parses one session document. Numbers inside opaque payloads
// stay json.Number so large integers survive a read-modify-write cycle.
func decodeSession(data []byte) (*types.Session, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var session types.Session
	if err := dec.Decode(&session); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after session document")
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) save(ctx context.Context, session *types.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal session %s: %v", ErrDecode, session.SessionID, err)
	}
	return s.storage.Put(ctx, types.SessionKey(session.SessionID), data)
}

func (s *SessionStore) stamp() time.Time {
	return s.now().UTC()
}

// mutate runs one read-modify-write cycle and refreshes LastUpdated.
func (s *SessionStore) mutate(ctx context.Context, id types.SessionID, fn func(*types.Session, time.Time)) error {
	unlock := s.locks.lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	now := s.stamp()
	if now.Before(session.LastUpdated) {
		now = session.LastUpdated
	}
	fn(session, now)
	session.LastUpdated = now
	return s.save(ctx, session)
}

// CreateSession persists a new session with a single session_created entry.
func (s *SessionStore) CreateSession(ctx context.Context, source types.Actor) (types.SessionID, error) {
	if !source.Valid() {
		return "", fmt.Errorf("create session: %w: actor %q", ErrInvalid, source)
	}

	now := s.stamp()
	session := &types.Session{
		SessionID:   types.NewSessionID(),
		CreatedAt:   now,
		LastUpdated: now,
		Source:      source,
		Decisions:   []types.Decision{},
		Artifacts:   []types.Artifact{},
		History: []types.HistoryEntry{{
			Timestamp: now,
			Actor:     source,
			Action:    types.ActionSessionCreated,
		}},
	}

	if err := s.save(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	slog.Debug("session created", "session_id", string(session.SessionID), "source", string(source))
	return session.SessionID, nil
}

// GetSession returns the session, or false if it is absent or unreadable.
func (s *SessionStore) GetSession(ctx context.Context, id types.SessionID) (*types.Session, bool) {
	session, err := s.load(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Debug("session unreadable", "session_id", string(id), "error", err)
		}
		return nil, false
	}
	return session, true
}

// UpdateSession overwrites the non-nil fields of update. The session id and
// the append-only collections are never touched.
func (s *SessionStore) UpdateSession(ctx context.Context, id types.SessionID, update types.SessionUpdate) error {
	if update.Source != nil && !update.Source.Valid() {
		return fmt.Errorf("update session: %w: actor %q", ErrInvalid, *update.Source)
	}

	err := s.mutate(ctx, id, func(session *types.Session, _ time.Time) {
		if update.Source != nil {
			session.Source = *update.Source
		}
		if update.TaskType != nil {
			session.TaskType = *update.TaskType
		}
		if update.CurrentGoal != nil {
			session.CurrentGoal = *update.CurrentGoal
		}
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// AddDecision appends a decision and its mirrored decision_added entry.
func (s *SessionStore) AddDecision(ctx context.Context, id types.SessionID, d types.NewDecision) (types.DecisionID, error) {
	if !d.MadeBy.Valid() {
		return "", fmt.Errorf("add decision: %w: actor %q", ErrInvalid, d.MadeBy)
	}
	if !d.Impact.Valid() {
		return "", fmt.Errorf("add decision: %w: impact %q", ErrInvalid, d.Impact)
	}

	decisionID := types.NewDecisionID()
	err := s.mutate(ctx, id, func(session *types.Session, now time.Time) {
		session.Decisions = append(session.Decisions, types.Decision{
			ID:          decisionID,
			Timestamp:   now,
			Description: d.Description,
			Rationale:   d.Rationale,
			MadeBy:      d.MadeBy,
			Impact:      d.Impact,
		})
		session.History = append(session.History, types.HistoryEntry{
			Timestamp: now,
			Actor:     d.MadeBy,
			Action:    types.ActionDecisionAdded,
			Details:   map[string]any{"decisionId": string(decisionID), "description": d.Description},
		})
	})
	if err != nil {
		return "", fmt.Errorf("add decision: %w", err)
	}
	slog.Debug("decision added", "session_id", string(id), "decision_id", string(decisionID))
	return decisionID, nil
}

// AddArtifact appends an artifact and its mirrored artifact_added entry.
func (s *SessionStore) AddArtifact(ctx context.Context, id types.SessionID, a types.NewArtifact) (types.ArtifactID, error) {
	if !a.CreatedBy.Valid() {
		return "", fmt.Errorf("add artifact: %w: actor %q", ErrInvalid, a.CreatedBy)
	}
	if !a.Type.Valid() {
		return "", fmt.Errorf("add artifact: %w: type %q", ErrInvalid, a.Type)
	}

	artifactID := types.NewArtifactID()
	err := s.mutate(ctx, id, func(session *types.Session, now time.Time) {
		session.Artifacts = append(session.Artifacts, types.Artifact{
			ID:        artifactID,
			Timestamp: now,
			CreatedBy: a.CreatedBy,
			Type:      a.Type,
			Content:   a.Content,
			Metadata:  a.Metadata,
		})
		session.History = append(session.History, types.HistoryEntry{
			Timestamp: now,
			Actor:     a.CreatedBy,
			Action:    types.ActionArtifactAdded,
			Details:   map[string]any{"artifactId": string(artifactID), "type": string(a.Type)},
		})
	})
	if err != nil {
		return "", fmt.Errorf("add artifact: %w", err)
	}
	slog.Debug("artifact added", "session_id", string(id), "artifact_id", string(artifactID), "type", string(a.Type))
	return artifactID, nil
}

// AddHistoryEntry stamps and appends a single history entry.
func (s *SessionStore) AddHistoryEntry(ctx context.Context, id types.SessionID, e types.NewHistoryEntry) error {
	if !e.Actor.Valid() {
		return fmt.Errorf("add history entry: %w: actor %q", ErrInvalid, e.Actor)
	}
	if e.Action == "" {
		return fmt.Errorf("add history entry: %w: empty action", ErrInvalid)
	}

	err := s.mutate(ctx, id, func(session *types.Session, now time.Time) {
		session.History = append(session.History, types.HistoryEntry{
			Timestamp: now,
			Actor:     e.Actor,
			Action:    e.Action,
			Details:   e.Details,
		})
	})
	if err != nil {
		return fmt.Errorf("add history entry: %w", err)
	}
	return nil
}

// GetArtifactsByType returns the artifacts of type t in append order.
func (s *SessionStore) GetArtifactsByType(ctx context.Context, id types.SessionID, t types.ArtifactType) []types.Artifact {
	out := []types.Artifact{}
	session, ok := s.GetSession(ctx, id)
	if !ok {
		return out
	}
	for _, a := range session.Artifacts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// GetDecisionsByImpact returns the decisions with the given impact in append order.
func (s *SessionStore) GetDecisionsByImpact(ctx context.Context, id types.SessionID, impact types.Impact) []types.Decision {
	out := []types.Decision{}
	session, ok := s.GetSession(ctx, id)
	if !ok {
		return out
	}
	for _, d := range session.Decisions {
		if d.Impact == impact {
			out = append(out, d)
		}
	}
	return out
}

// ListActiveSessions returns the ids of every stored session in storage order.
func (s *SessionStore) ListActiveSessions(ctx context.Context) ([]types.SessionID, error) {
	keys, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	ids := make([]types.SessionID, 0, len(keys))
	for _, key := range keys {
		if id, ok := types.ParseSessionKey(key); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeleteSession removes a session permanently. Deleting an absent session
// fails with ErrNotFound.
func (s *SessionStore) DeleteSession(ctx context.Context, id types.SessionID) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.storage.Delete(ctx, types.SessionKey(id)); err != nil {
		if errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrInvalid) {
			return fmt.Errorf("delete session: %w: %w", ErrNotFound, err)
		}
		return fmt.Errorf("delete session: %w", err)
	}
	s.locks.forget(id)
	slog.Debug("session deleted", "session_id", string(id))
	return nil
}
