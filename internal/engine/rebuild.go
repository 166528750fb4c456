package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"shaderscope/internal/logging"
	"shaderscope/internal/shader"
)

// UnitLoader produces the unit set for a background rebuild. Load must
// honor ctx cancellation; a superseded rebuild is cancelled mid-load.
type UnitLoader interface {
	Load(ctx context.Context) ([]shader.ParsedUnit, error)
}

// LoaderFunc adapts a function to the UnitLoader interface.
type LoaderFunc func(ctx context.Context) ([]shader.ParsedUnit, error)

func (f LoaderFunc) Load(ctx context.Context) ([]shader.ParsedUnit, error) {
	return f(ctx)
}

type inflightRebuild struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// RebuildAsync starts a background bulk rebuild: units are loaded through
// the loader, then applied with Rebuild. A new call supersedes any
// in-flight one, cancelling its context and waiting for it to drain. The
// published snapshot stays queryable throughout; a cancelled or failed
// load publishes nothing.
//
// The returned id correlates log lines for this rebuild.
func (s *Session) RebuildAsync(ctx context.Context, loader UnitLoader) string {
	rctx, cancel := context.WithCancel(ctx)
	next := &inflightRebuild{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.inflightMu.Lock()
	prev := s.inflight
	s.inflight = next
	s.inflightMu.Unlock()

	if prev != nil {
		logging.Engine("rebuild %s superseded by %s", prev.id, next.id)
		prev.cancel()
		<-prev.done
	}

	logging.Engine("rebuild %s started", next.id)
	go s.runRebuild(rctx, next, loader)
	return next.id
}

func (s *Session) runRebuild(ctx context.Context, r *inflightRebuild, loader UnitLoader) {
	defer close(r.done)
	defer r.cancel()

	units, err := loader.Load(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Engine("rebuild %s cancelled during load", r.id)
		} else {
			logging.EngineError("rebuild %s: load failed: %v", r.id, err)
		}
		return
	}
	if ctx.Err() != nil {
		logging.Engine("rebuild %s cancelled before apply", r.id)
		return
	}

	s.Rebuild(units)
	logging.Engine("rebuild %s published", r.id)
}

// WaitIdle blocks until no background rebuild is in flight. It does not
// prevent new ones from starting.
func (s *Session) WaitIdle() {
	s.inflightMu.Lock()
	inflight := s.inflight
	s.inflightMu.Unlock()

	if inflight != nil {
		<-inflight.done
	}
}
