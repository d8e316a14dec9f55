// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browse runs one database browser interaction: compose the
// selection, execute it, present the rows, and record the outcome.
package browse

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/executor"
	"github.com/pdiddy/coldspray-hub/internal/history"
	"github.com/pdiddy/coldspray-hub/internal/present"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// Recorder stores executed queries. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Runner executes query text. *executor.Executor implements it.
type Runner interface {
	Run(ctx context.Context, query string) (executor.Result, error)
}

// Outcome is the result of one interaction.
type Outcome struct {
	Query     compose.Query `json:"query"`
	Grid      present.Grid  `json:"grid"`
	Duration  time.Duration `json:"duration"`
	Cached    bool          `json:"cached"`
	HistoryID string        `json:"history_id,omitempty"`
}

// Service ties the composer, executor, and optional history together.
type Service struct {
	composer *compose.Composer
	runner   Runner
	recorder Recorder
	logger   *zap.Logger
}

// New returns a service. recorder may be nil to skip history.
func New(composer *compose.Composer, runner Runner, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{composer: composer, runner: runner, recorder: recorder, logger: logger}
}

// Compose builds the query for sel without running it.
func (s *Service) Compose(sel compose.Selection) (compose.Query, error) {
	return s.composer.Compose(sel)
}

// Browse composes, runs, and presents sel. A failed execution is recorded
// and returned as *executor.ExecError.
func (s *Service) Browse(ctx context.Context, sel compose.Selection) (Outcome, error) {
	q, err := s.composer.Compose(sel)
	if err != nil {
		return Outcome{}, err
	}
	raw, err := json.Marshal(sel)
	if err != nil {
		s.logger.Warn("encoding selection for history", zap.Error(err))
	}
	return s.run(ctx, q, sel.PaperType, string(raw))
}

// Query runs hand-written query text. Identity columns are blanked as for
// composed queries when the text selects them.
func (s *Service) Query(ctx context.Context, text string) (Outcome, error) {
	q := compose.Query{
		Text:            text,
		IdentityColumns: []string{compose.VarYear, compose.VarDOI, compose.VarTitle},
	}
	return s.run(ctx, q, types.PaperAny, "")
}

func (s *Service) run(ctx context.Context, q compose.Query, pt types.PaperType, selection string) (Outcome, error) {
	res, err := s.runner.Run(ctx, q.Text)
	entry := history.Entry{PaperType: pt, Selection: selection, Query: q.Text}
	if err != nil {
		entry.Error = err.Error()
		s.record(ctx, entry)
		return Outcome{Query: q}, err
	}

	if q.Vars == nil {
		q.Vars = res.Table.Columns
	}
	grid := present.Present(res.Table, q.IdentityColumns)
	entry.Rows = grid.Len()
	entry.Papers = grid.Papers
	entry.Duration = res.Duration
	entry.Cached = res.Cached

	out := Outcome{
		Query:     q,
		Grid:      grid,
		Duration:  res.Duration,
		Cached:    res.Cached,
		HistoryID: s.record(ctx, entry),
	}
	return out, nil
}

// record logs and swallows history failures; browsing never fails because
// the history database is unavailable.
func (s *Service) record(ctx context.Context, e history.Entry) string {
	if s.recorder == nil {
		return ""
	}
	rec, err := s.recorder.Record(ctx, e)
	if err != nil {
		s.logger.Warn("recording query history", zap.Error(err))
		return ""
	}
	return rec.ID
}
