package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/corpsite/internal/observability/logger"
	"github.com/dropDatabas3/corpsite/internal/store"
)

// Recorder deja rastro doble: una línea estructurada en el log y una fila en
// activity_log que el panel lista. El sink de DB es best-effort: si la
// escritura falla, el evento igual quedó en el log.
type Recorder struct {
	store *store.Store
}

func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// Record registra quién hizo qué sobre qué.
func (r *Recorder) Record(ctx context.Context, actor, action, target, detail string) {
	logger.From(ctx).Info("audit",
		zap.String("actor", actor),
		zap.String("action", action),
		zap.String("target", target),
		zap.String("detail", detail),
	)
	if r == nil || r.store == nil {
		return
	}
	e := &store.ActivityEntry{Actor: actor, Action: action, Target: target, Detail: detail, CreatedAt: time.Now().UTC()}
	if err := r.store.AppendActivity(ctx, e); err != nil {
		logger.From(ctx).Warn("activity log insert falló", logger.Err(err))
	}
}
