// internal/state/export.go
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/user/sharedctx/internal/types"
)

// ExportTo writes the full session, id included, as indented JSON.
func (s *SessionStore) ExportTo(ctx context.Context, id types.SessionID, w io.Writer) error {
	data, err := s.exportBytes(ctx, id)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("export session: %w: %v", ErrStorage, err)
	}
	return nil
}

// ExportSession writes the session to the file at path.
func (s *SessionStore) ExportSession(ctx context.Context, id types.SessionID, path string) error {
	data, err := s.exportBytes(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export session: %w: %v", ErrStorage, err)
	}
	slog.Debug("session exported", "session_id", string(id), "path", path)
	return nil
}

func (s *SessionStore) exportBytes(ctx context.Context, id types.SessionID) ([]byte, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export session: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export session: %w: %v", ErrDecode, err)
	}
	return append(data, '\n'), nil
}

// ImportFrom decodes an exported session, gives it a fresh id and persists
// it. History is kept verbatim; importing records no entry of its own, so
// importing the same export twice yields two independent sessions.
func (s *SessionStore) ImportFrom(ctx context.Context, r io.Reader) (types.SessionID, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("import session: %w: %v", ErrStorage, err)
	}

	session, err := decodeSession(data)
	if err != nil {
		return "", fmt.Errorf("import session: %w: %v", ErrDecode, err)
	}

	if session.Decisions == nil {
		session.Decisions = []types.Decision{}
	}
	if session.Artifacts == nil {
		session.Artifacts = []types.Artifact{}
	}
	if session.History == nil {
		session.History = []types.HistoryEntry{}
	}

	original := session.SessionID
	session.SessionID = types.NewSessionID()
	if err := s.save(ctx, session); err != nil {
		return "", fmt.Errorf("import session: %w", err)
	}
	slog.Debug("session imported", "session_id", string(session.SessionID), "original_id", string(original))
	return session.SessionID, nil
}

// ImportSession imports the session exported to the file at path.
func (s *SessionStore) ImportSession(ctx context.Context, path string) (types.SessionID, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("import session: %w: %v", ErrStorage, err)
	}
	defer f.Close()
	return s.ImportFrom(ctx, f)
}
