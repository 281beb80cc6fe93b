// internal/journal/journal.go

// Package journal records reasoning-engine requests and their outcomes into a
// shared session. Recording is best-effort: failures are logged and never
// reach the caller, so a broken store cannot fail a tool invocation.
package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/sharedctx/internal/types"
)

// History actions written by the journal.
const (
	ActionRequest = "codex_request"
	ActionResult  = "codex_result"
)

// Options mirrors the options bag the executor runs a prompt with.
type Options struct {
	Model            string `json:"model,omitempty"`
	FullAuto         *bool  `json:"fullAuto,omitempty"`
	Sandbox          string `json:"sandbox,omitempty"`
	JSON             bool   `json:"json,omitempty"`
	OutputFile       string `json:"outputFile,omitempty"`
	WorkingDirectory string `json:"workingDirectory,omitempty"`
	SessionID        string `json:"sessionId,omitempty"`
}

// Result is the executor's outcome for one prompt.
type Result struct {
	Success       bool          `json:"success"`
	Output        string        `json:"output"`
	Error         string        `json:"error,omitempty"`
	ExecutionTime time.Duration `json:"-"`
	SessionID     string        `json:"sessionId,omitempty"`
}

// Journal writes into a SessionStore on behalf of the executor.
type Journal struct {
	store    types.SessionStore
	actor    types.Actor
	artifact types.ArtifactType
}

// Option configures a Journal.
type Option func(*Journal)

// WithActor sets the actor recorded on entries. Defaults to codex.
func WithActor(a types.Actor) Option {
	return func(j *Journal) { j.actor = a }
}

// WithArtifactType stores successful outputs as artifacts of type t.
func WithArtifactType(t types.ArtifactType) Option {
	return func(j *Journal) { j.artifact = t }
}

func New(store types.SessionStore, opts ...Option) *Journal {
	j := &Journal{store: store, actor: types.ActorCodex}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RecordRequest appends the prompt and options to the target session.
func (j *Journal) RecordRequest(ctx context.Context, prompt string, opts Options) {
	if opts.SessionID == "" {
		return
	}
	id := types.SessionID(opts.SessionID)
	err := j.store.AddHistoryEntry(ctx, id, types.NewHistoryEntry{
		Actor:  j.actor,
		Action: ActionRequest,
		Details: map[string]any{
			"prompt":    prompt,
			"options":   opts,
			"timestamp": time.Now().UTC(),
		},
	})
	if err != nil {
		slog.Warn("failed to record request", "session_id", opts.SessionID, "error", err)
	}
}

// RecordResult appends the outcome to the target session and, for successful
// results with a configured artifact type, stores the output as an artifact.
func (j *Journal) RecordResult(ctx context.Context, res Result) {
	if res.SessionID == "" {
		return
	}
	id := types.SessionID(res.SessionID)

	details := map[string]any{
		"success":         res.Success,
		"output":          res.Output,
		"executionTimeMs": res.ExecutionTime.Milliseconds(),
		"timestamp":       time.Now().UTC(),
	}
	if res.Error != "" {
		details["error"] = res.Error
	}
	if err := j.store.AddHistoryEntry(ctx, id, types.NewHistoryEntry{
		Actor:   j.actor,
		Action:  ActionResult,
		Details: details,
	}); err != nil {
		slog.Warn("failed to record result", "session_id", res.SessionID, "error", err)
		return
	}

	if !res.Success || j.artifact == "" || res.Output == "" {
		return
	}
	if _, err := j.store.AddArtifact(ctx, id, types.NewArtifact{
		CreatedBy: j.actor,
		Type:      j.artifact,
		Content:   res.Output,
		Metadata:  map[string]any{"executionTimeMs": res.ExecutionTime.Milliseconds()},
	}); err != nil {
		slog.Warn("failed to store result artifact", "session_id", res.SessionID, "error", err)
	}
}
