// internal/journal/journal_test.go
package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sharedctx/internal/state"
	"github.com/user/sharedctx/internal/types"
)

func newSession(t *testing.T) (*state.SessionStore, types.SessionID) {
	t.Helper()
	store := state.NewSessionStore(state.NewMemoryStorage())
	id, err := store.CreateSession(context.Background(), types.ActorClaude)
	require.NoError(t, err)
	return store, id
}

func TestRecordRequestAndResult(t *testing.T) {
	ctx := context.Background()
	store, id := newSession(t)
	j := New(store)

	j.RecordRequest(ctx, "plan the migration", Options{Model: "gpt-5", Sandbox: "read-only", SessionID: string(id)})
	j.RecordResult(ctx, Result{Success: true, Output: "1. do it", ExecutionTime: 1500 * time.Millisecond, SessionID: string(id)})

	session, ok := store.GetSession(ctx, id)
	require.True(t, ok)
	require.Len(t, session.History, 3)

	req := session.History[1]
	assert.Equal(t, ActionRequest, req.Action)
	assert.Equal(t, types.ActorCodex, req.Actor)
	details := req.Details.(map[string]any)
	assert.Equal(t, "plan the migration", details["prompt"])
	assert.Equal(t, map[string]any{"model": "gpt-5", "sandbox": "read-only", "sessionId": string(id)}, details["options"])

	res := session.History[2]
	assert.Equal(t, ActionResult, res.Action)
	resDetails := res.Details.(map[string]any)
	assert.Equal(t, true, resDetails["success"])
	assert.Equal(t, "1. do it", resDetails["output"])
	assert.Equal(t, json.Number("1500"), resDetails["executionTimeMs"])
	assert.NotContains(t, resDetails, "error")

	assert.Empty(t, session.Artifacts)
}

func TestRecordResultStoresArtifact(t *testing.T) {
	ctx := context.Background()
	store, id := newSession(t)
	j := New(store, WithActor(types.ActorClaude), WithArtifactType(types.ArtifactAnalysis))

	j.RecordResult(ctx, Result{Success: true, Output: "findings", SessionID: string(id)})
	j.RecordResult(ctx, Result{Success: false, Error: "exit status 1", SessionID: string(id)})

	session, _ := store.GetSession(ctx, id)
	require.Len(t, session.Artifacts, 1)
	assert.Equal(t, "findings", session.Artifacts[0].Content)
	assert.Equal(t, types.ActorClaude, session.Artifacts[0].CreatedBy)

	// created, result, artifact_added, failed result
	require.Len(t, session.History, 4)
	assert.Equal(t, types.ActionArtifactAdded, session.History[2].Action)
	failed := session.History[3].Details.(map[string]any)
	assert.Equal(t, false, failed["success"])
	assert.Equal(t, "exit status 1", failed["error"])

	assert.Len(t, store.GetArtifactsByType(ctx, id, types.ArtifactAnalysis), 1)
}

func TestRecordWithoutSessionIsNoop(t *testing.T) {
	ctx := context.Background()
	store, id := newSession(t)
	j := New(store, WithArtifactType(types.ArtifactPlan))

	j.RecordRequest(ctx, "prompt", Options{})
	j.RecordResult(ctx, Result{Success: true, Output: "x"})

	session, _ := store.GetSession(ctx, id)
	assert.Len(t, session.History, 1)
}

func TestRecordSwallowsStoreFailures(t *testing.T) {
	ctx := context.Background()
	store, _ := newSession(t)
	j := New(store, WithArtifactType(types.ArtifactPlan))
	missing := string(types.NewSessionID())

	assert.NotPanics(t, func() {
		j.RecordRequest(ctx, "prompt", Options{SessionID: missing})
		j.RecordResult(ctx, Result{Success: true, Output: "x", SessionID: missing})
	})
	_, ok := store.GetSession(ctx, types.SessionID(missing))
	assert.False(t, ok)
}
