// internal/types/models_test.go
package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSessionSerializationFieldNames(t *testing.T) {
	now := time.Now().UTC()
	session := Session{
		SessionID:   NewSessionID(),
		CreatedAt:   now,
		LastUpdated: now,
		Source:      ActorClaude,
		Decisions:   []Decision{},
		Artifacts:   []Artifact{},
		History:     []HistoryEntry{{Timestamp: now, Actor: ActorClaude, Action: ActionSessionCreated}},
	}

	data, err := json.Marshal(session)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"sessionId", "createdAt", "lastUpdated", "source", "decisions", "artifacts", "history"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected field %s in %s", field, data)
		}
	}
	for _, field := range []string{"taskType", "currentGoal"} {
		if _, ok := raw[field]; ok {
			t.Errorf("expected optional field %s to be omitted", field)
		}
	}
	if strings.Contains(string(data), `"details"`) {
		t.Errorf("expected empty details to be omitted: %s", data)
	}
}

func TestEnumUnmarshalRejectsUnknownValues(t *testing.T) {
	var a Actor
	if err := json.Unmarshal([]byte(`"gemini"`), &a); err == nil {
		t.Error("expected error for unknown actor")
	}
	if err := json.Unmarshal([]byte(`"codex"`), &a); err != nil || a != ActorCodex {
		t.Errorf("expected codex, got %q (err=%v)", a, err)
	}

	var i Impact
	if err := json.Unmarshal([]byte(`"critical"`), &i); err == nil {
		t.Error("expected error for unknown impact")
	}

	var at ArtifactType
	if err := json.Unmarshal([]byte(`"plan"`), &at); err != nil || at != ArtifactPlan {
		t.Errorf("expected plan, got %q (err=%v)", at, err)
	}
	if err := json.Unmarshal([]byte(`7`), &at); err == nil {
		t.Error("expected error for non-string artifact type")
	}
}

func TestSessionValidateRequiresClosedSetFields(t *testing.T) {
	valid := Session{
		Source:    ActorClaude,
		Decisions: []Decision{{MadeBy: ActorUser, Impact: ImpactLow}},
		Artifacts: []Artifact{{CreatedBy: ActorCodex, Type: ArtifactCode}},
		History:   []HistoryEntry{{Actor: ActorClaude, Action: ActionSessionCreated}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Session)
	}{
		{"missing source", func(s *Session) { s.Source = "" }},
		{"decision without impact", func(s *Session) { s.Decisions[0].Impact = "" }},
		{"decision without author", func(s *Session) { s.Decisions[0].MadeBy = "" }},
		{"artifact without type", func(s *Session) { s.Artifacts[0].Type = "" }},
		{"artifact without author", func(s *Session) { s.Artifacts[0].CreatedBy = "" }},
		{"history without actor", func(s *Session) { s.History[0].Actor = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.Decisions = append([]Decision(nil), valid.Decisions...)
			s.Artifacts = append([]Artifact(nil), valid.Artifacts...)
			s.History = append([]HistoryEntry(nil), valid.History...)
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
