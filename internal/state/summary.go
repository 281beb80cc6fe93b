// internal/state/summary.go
package state

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/user/sharedctx/internal/types"
)

const summaryWorkers = 8

// Summaries loads every listed session concurrently and returns one row per
// readable session, in listing order. Sessions that vanish or fail to decode
// between listing and loading are skipped.
func (s *SessionStore) Summaries(ctx context.Context) ([]types.SessionSummary, error) {
	ids, err := s.ListActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*types.SessionSummary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryWorkers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("summarize sessions: %w", err)
			}
			session, ok := s.GetSession(gctx, id)
			if !ok {
				return nil
			}
			rows[i] = summarize(session)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.SessionSummary, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func summarize(session *types.Session) *types.SessionSummary {
	return &types.SessionSummary{
		SessionID:   session.SessionID,
		Source:      session.Source,
		TaskType:    session.TaskType,
		CurrentGoal: session.CurrentGoal,
		CreatedAt:   session.CreatedAt,
		LastUpdated: session.LastUpdated,
		Decisions:   len(session.Decisions),
		Artifacts:   len(session.Artifacts),
		History:     len(session.History),
	}
}
