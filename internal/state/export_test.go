// internal/state/export_test.go
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sharedctx/internal/types"
)

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateSession(ctx, types.ActorClaude)
	require.NoError(t, err)
	_, err = store.AddDecision(ctx, id, types.NewDecision{
		Description: "use X",
		Rationale:   "lower latency",
		MadeBy:      types.ActorClaude,
		Impact:      types.ImpactHigh,
	})
	require.NoError(t, err)
	_, err = store.AddArtifact(ctx, id, types.NewArtifact{
		Type:      types.ArtifactPlan,
		CreatedBy: types.ActorCodex,
		Content:   map[string]any{"steps": []int{1, 2}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, store.ExportSession(ctx, id, path))

	imported, err := store.ImportSession(ctx, path)
	require.NoError(t, err)
	assert.NotEqual(t, id, imported)

	original, ok := store.GetSession(ctx, id)
	require.True(t, ok)
	copied, ok := store.GetSession(ctx, imported)
	require.True(t, ok)

	assert.Equal(t, imported, copied.SessionID)
	require.Len(t, copied.Decisions, 1)
	require.Len(t, copied.Artifacts, 1)
	require.Len(t, copied.History, 3)
	assert.Equal(t, types.ActionSessionCreated, copied.History[0].Action)
	assert.Equal(t, types.ActionDecisionAdded, copied.History[1].Action)
	assert.Equal(t, types.ActionArtifactAdded, copied.History[2].Action)

	assert.Equal(t, original.Decisions, copied.Decisions)
	assert.Equal(t, original.Artifacts, copied.Artifacts)
	assert.Equal(t, original.History, copied.History)
	assert.Equal(t, original.CreatedAt, copied.CreatedAt)
	assert.Equal(t, original.LastUpdated, copied.LastUpdated)
	assert.Equal(t, original.Source, copied.Source)
}

func TestExportTo_KeepsSessionID(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStorage())
	id, err := store.CreateSession(ctx, types.ActorUser)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ExportTo(ctx, id, &buf))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, string(id), doc["sessionId"])
}

func TestImportFrom_TwiceYieldsIndependentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStorage())
	id, err := store.CreateSession(ctx, types.ActorCodex)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ExportTo(ctx, id, &buf))
	exported := buf.String()

	first, err := store.ImportFrom(ctx, strings.NewReader(exported))
	require.NoError(t, err)
	second, err := store.ImportFrom(ctx, strings.NewReader(exported))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = store.AddDecision(ctx, first, types.NewDecision{MadeBy: types.ActorUser, Impact: types.ImpactLow})
	require.NoError(t, err)
	untouched, _ := store.GetSession(ctx, second)
	assert.Empty(t, untouched.Decisions)

	ids, err := store.ListActiveSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestImportFrom_MalformedInput(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStorage())

	docs := []string{
		"",
		"{not json",
		"null",
		"{}",
		`{"source":"gemini"}`,
		`{"decisions":[{"impact":"enormous"}]}`,
		`{"source":"claude","decisions":[{"description":"d"}]}`,
		`{"source":"claude","artifacts":[{"createdBy":"codex"}]}`,
		`{"source":"claude","history":[{"action":"note"}]}`,
		`{"source":"claude"} {"source":"codex"}`,
	}
	for _, doc := range docs {
		_, err := store.ImportFrom(ctx, strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrDecode, "input %q", doc)
	}

	ids, err := store.ListActiveSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestImportSession_MissingFile(t *testing.T) {
	store := newTestStore(t)
	_, err := store.ImportSession(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, ErrStorage)
}

func TestExportSession_AbsentWritesNothing(t *testing.T) {
	store := newTestStore(t)
	path := filepath.Join(t.TempDir(), "out.json")
	err := store.ExportSession(context.Background(), types.NewSessionID(), path)
	assert.ErrorIs(t, err, ErrNotFound)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportFrom_MinimalDocumentIsReadable(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStorage())

	id, err := store.ImportFrom(ctx, strings.NewReader(`{"source":"user"}`))
	require.NoError(t, err)

	session, ok := store.GetSession(ctx, id)
	require.True(t, ok)
	assert.Equal(t, types.ActorUser, session.Source)
	assert.NotNil(t, session.Decisions)
	assert.NotNil(t, session.Artifacts)

	_, err = store.AddDecision(ctx, id, types.NewDecision{Description: "d", MadeBy: types.ActorUser, Impact: types.ImpactLow})
	require.NoError(t, err)
}

func TestImportFrom_PreservesLargeIntegers(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(NewMemoryStorage())

	doc := `{"source":"codex","artifacts":[{"id":"a1","createdBy":"codex","type":"analysis","content":{"rows":9007199254740993}}]}`
	id, err := store.ImportFrom(ctx, strings.NewReader(doc))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, store.ExportTo(ctx, id, &buf))
	assert.Contains(t, buf.String(), `"rows": 9007199254740993`)
}
