// internal/types/enums.go
package types

import (
	"encoding/json"
	"fmt"
)

// Actor identifies a party that can act on a session.
type Actor string

const (
	ActorClaude Actor = "claude"
	ActorCodex  Actor = "codex"
	ActorUser   Actor = "user"
)

// Actors lists every valid actor.
var Actors = []Actor{ActorClaude, ActorCodex, ActorUser}

func (a Actor) Valid() bool {
	switch a {
	case ActorClaude, ActorCodex, ActorUser:
		return true
	}
	return false
}

func (a *Actor) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(a), "actor", func(s string) bool { return Actor(s).Valid() })
}

// Impact grades how much a decision matters.
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

func (i Impact) Valid() bool {
	switch i {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	}
	return false
}

func (i *Impact) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(i), "impact", func(s string) bool { return Impact(s).Valid() })
}

// ArtifactType classifies an artifact's content.
type ArtifactType string

const (
	ArtifactPlan          ArtifactType = "plan"
	ArtifactSpecification ArtifactType = "specification"
	ArtifactAnalysis      ArtifactType = "analysis"
	ArtifactReasoning     ArtifactType = "reasoning"
	ArtifactCode          ArtifactType = "code"
	ArtifactOther         ArtifactType = "other"
)

func (t ArtifactType) Valid() bool {
	switch t {
	case ArtifactPlan, ArtifactSpecification, ArtifactAnalysis, ArtifactReasoning, ArtifactCode, ArtifactOther:
		return true
	}
	return false
}

func (t *ArtifactType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(t), "artifact type", func(s string) bool { return ArtifactType(s).Valid() })
}

func unmarshalEnum(data []byte, dst *string, kind string, valid func(string) bool) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal %s: %w", kind, err)
	}
	if !valid(s) {
		return fmt.Errorf("invalid %s: %q", kind, s)
	}
	*dst = s
	return nil
}
