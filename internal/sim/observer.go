package sim

import (
	"log/slog"

	"github.com/san-kum/chladni/internal/dynamo"
)

// ProgressLogger is an Observer that logs every interval steps and on the
// last step.
type ProgressLogger struct {
	logger   *slog.Logger
	total    int
	interval int
}

// NewProgressLogger reports about parts times over a run of total steps.
func NewProgressLogger(logger *slog.Logger, total, parts int) *ProgressLogger {
	if logger == nil {
		logger = slog.Default()
	}
	interval := 1
	if parts > 0 && total > parts {
		interval = total / parts
	}
	return &ProgressLogger{logger: logger, total: total, interval: interval}
}

func (p *ProgressLogger) OnStep(step int, ps dynamo.Particles) {
	if step%p.interval != 0 && step != p.total {
		return
	}
	p.logger.Info("progress",
		"step", step,
		"of", p.total,
		"particles", len(ps),
	)
}
