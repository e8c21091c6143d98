package server

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/store"
)

// tracker records run progress in the store. Store failures are logged and
// otherwise ignored; a nil tracker does nothing.
type tracker struct {
	st  store.Store
	ctx context.Context
	id  string
	log *zap.Logger
}

// track starts a run record. Store writes outlive the request context so a
// disconnect can still be recorded as a failure.
func (s *Server) track(ctx context.Context, kind model.RunKind, total int) *tracker {
	if s.deps.Store == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	run, err := s.deps.Store.CreateRun(ctx, kind, total)
	if err != nil {
		zap.L().Warn("server: create run", zap.String("kind", string(kind)), zap.Error(err))
		return nil
	}
	return &tracker{
		st:  s.deps.Store,
		ctx: ctx,
		id:  run.ID,
		log: zap.L().With(zap.String("run_id", run.ID)),
	}
}

func (t *tracker) progress(completed int) {
	if t == nil {
		return
	}
	if err := t.st.UpdateProgress(t.ctx, t.id, completed); err != nil {
		t.log.Warn("server: update run progress", zap.Error(err))
	}
}

// finish marks the run complete, or failed when reqCtx ended first.
func (t *tracker) finish(reqCtx context.Context) {
	if t == nil {
		return
	}
	var err error
	if cause := reqCtx.Err(); cause != nil {
		err = t.st.FailRun(t.ctx, t.id, "client disconnected: "+cause.Error())
	} else {
		err = t.st.CompleteRun(t.ctx, t.id)
	}
	if err != nil {
		t.log.Warn("server: finish run", zap.Error(err))
	}
}

func (t *tracker) runID() string {
	if t == nil {
		return ""
	}
	return t.id
}
