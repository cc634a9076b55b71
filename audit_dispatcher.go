package tokenguard

import (
	"context"

	"github.com/fkilld/tokenguard/internal/audit"
)

// sinkAdapter bridges the public AuditSink to the internal dispatcher.
// AuditEvent and audit.Event are field-identical, so conversion is direct.
type sinkAdapter struct {
	sink AuditSink
}

func (a sinkAdapter) Emit(ctx context.Context, event audit.Event) {
	a.sink.Emit(ctx, AuditEvent(event))
}

type auditDispatcher struct {
	inner *audit.Dispatcher
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	inner := audit.NewDispatcher(cfg.BufferSize, cfg.DropIfFull, sinkAdapter{sink: sink})

	return &auditDispatcher{inner: inner}
}

func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	d.inner.Emit(ctx, audit.Event(event))
}

func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.inner.Close()
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.inner.Dropped()
}
