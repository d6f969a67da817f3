package scanner

import (
	"context"

	"github.com/AssetDocs/legacylocker/pkg/logger"

	"github.com/robfig/cron/v3"
)

// RunLock guards against overlapping sweeps from concurrent schedule
// firings (or multiple instances sharing one database).
type RunLock interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// NoLock runs every sweep unconditionally.
type NoLock struct{}

func (NoLock) TryLock(context.Context) (bool, error) { return true, nil }
func (NoLock) Unlock(context.Context) error          { return nil }

// Runner drives the processor on a cron schedule.
type Runner struct {
	processor *Processor
	lock      RunLock
	logger    *logger.Logger
	cron      *cron.Cron
}

func NewRunner(processor *Processor, lock RunLock, l *logger.Logger) *Runner {
	if lock == nil {
		lock = NoLock{}
	}
	return &Runner{
		processor: processor,
		lock:      lock,
		logger:    l,
		cron:      cron.New(),
	}
}

// Start registers the sweep on the given cron spec (e.g. "@every 15m")
// and starts the scheduler.
func (r *Runner) Start(ctx context.Context, spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		r.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce executes a single locked sweep. Used by the scheduler and by
// the internal HTTP trigger.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	ok, err := r.lock.TryLock(ctx)
	if err != nil {
		r.logWarn("scan: lock acquisition failed: %v", err)
		return 0, err
	}
	if !ok {
		r.logWarn("scan: another sweep is running, skipping")
		return 0, nil
	}
	defer func() {
		if err := r.lock.Unlock(ctx); err != nil {
			r.logWarn("scan: lock release failed: %v", err)
		}
	}()

	processed, err := r.processor.ProcessBatch(ctx)
	if err != nil {
		r.logWarn("scan: sweep failed: %v", err)
		return processed, err
	}
	if processed > 0 {
		r.logInfo("scan: advanced %d lockers past grace period", processed)
	}
	return processed, nil
}

func (r *Runner) logInfo(template string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Infof(template, args...)
	}
}

func (r *Runner) logWarn(template string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warnf(template, args...)
	}
}
