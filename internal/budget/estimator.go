// internal/budget/estimator.go

// Package budget estimates how many model tokens a session's shared context
// occupies when it is handed to a reasoning engine.
package budget

import (
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/sharedctx/internal/types"
)

// Counter returns the token count of a string.
type Counter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// NewTiktokenCounter selects the tokenizer for model, falling back to
// cl100k_base for unknown models.
func NewTiktokenCounter(model string) (Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return tiktokenCounter{enc: enc}, nil
}

// Footprint is the per-collection token count of a session.
type Footprint struct {
	Decisions int `json:"decisions"`
	Artifacts int `json:"artifacts"`
	History   int `json:"history"`
}

// Total returns the sum over all collections.
func (f Footprint) Total() int {
	return f.Decisions + f.Artifacts + f.History
}

// Estimator measures sessions with a Counter.
type Estimator struct {
	counter Counter
}

func New(counter Counter) *Estimator {
	return &Estimator{counter: counter}
}

// Measure counts the tokens of each entry's JSON encoding. Artifact content
// that is a plain string is counted as text rather than as a quoted literal.
func (e *Estimator) Measure(session *types.Session) (Footprint, error) {
	var fp Footprint
	for _, d := range session.Decisions {
		n, err := e.countJSON(d)
		if err != nil {
			return Footprint{}, fmt.Errorf("measure decision %s: %w", d.ID, err)
		}
		fp.Decisions += n
	}
	for _, a := range session.Artifacts {
		if s, ok := a.Content.(string); ok {
			fp.Artifacts += e.counter.Count(s)
			continue
		}
		n, err := e.countJSON(a.Content)
		if err != nil {
			return Footprint{}, fmt.Errorf("measure artifact %s: %w", a.ID, err)
		}
		fp.Artifacts += n
	}
	for _, h := range session.History {
		n, err := e.countJSON(h)
		if err != nil {
			return Footprint{}, fmt.Errorf("measure history %s: %w", h.Action, err)
		}
		fp.History += n
	}
	return fp, nil
}

func (e *Estimator) countJSON(v any) (int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return e.counter.Count(string(data)), nil
}
