package worker

import (
	"context"
	"fmt"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSchedule = "@every 1m"

type QuoteGetter interface {
	GetQuote(ctx context.Context, symbol string, forceRefresh bool) (domain.QuoteRecord, error)
}

// Locker claims a symbol so that only one replica refreshes it per window.
type Locker interface {
	TryAcquire(ctx context.Context, key string) (bool, error)
}

type RunRecorder interface {
	RefreshRun(startedAt time.Time, failures int)
}

type RunResult struct {
	Answered int
	Failed   int
	Skipped  int
}

var _ application.Worker = (*RefreshWorker)(nil)

// RefreshWorker keeps watched symbols warm by calling GetQuote without
// forcing, so only stale entries reach the provider.
type RefreshWorker struct {
	svc         QuoteGetter
	symbols     []string
	schedule    string
	lock        Locker
	rec         RunRecorder
	log         *zap.Logger
	callTimeout time.Duration
}

type Option func(*RefreshWorker)

func WithLocker(l Locker) Option { return func(w *RefreshWorker) { w.lock = l } }
func WithRecorder(r RunRecorder) Option { return func(w *RefreshWorker) { w.rec = r } }
func WithLogger(l *zap.Logger) Option { return func(w *RefreshWorker) { w.log = l } }
func WithCallTimeout(d time.Duration) Option { return func(w *RefreshWorker) { w.callTimeout = d } }

func NewRefreshWorker(svc QuoteGetter, symbols []string, schedule string, opts ...Option) (*RefreshWorker, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("refresh schedule %q: %w", schedule, err)
	}
	w := &RefreshWorker{svc: svc, symbols: symbols, schedule: schedule, callTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	return w, nil
}

// Start runs the schedule until ctx is canceled. A run that is still going
// when the next tick fires makes that tick a no-op.
func (w *RefreshWorker) Start(ctx context.Context) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		w.log.Error("refresh_worker.bad_schedule", zap.String("schedule", w.schedule), zap.Error(err))
		return
	}
	w.log.Info("refresh_worker.started", zap.String("schedule", w.schedule), zap.Strings("symbols", w.symbols))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	w.log.Info("refresh_worker.stopped")
}

// RunOnce makes one GetQuote call per watched symbol. Failures are logged
// and counted, never retried within the run.
func (w *RefreshWorker) RunOnce(ctx context.Context) RunResult {
	started := time.Now()
	var res RunResult
	for _, raw := range w.symbols {
		if ctx.Err() != nil {
			break
		}
		symbol, err := domain.NormalizeSymbol(raw)
		if err != nil {
			res.Failed++
			w.log.Error("refresh_worker.symbol_invalid", zap.String("symbol", raw), zap.Error(err))
			continue
		}
		s := symbol.String()
		if w.lock != nil {
			ok, err := w.lock.TryAcquire(ctx, "refresh:"+s)
			if err != nil {
				w.log.Warn("refresh_worker.lock_failed", zap.String("symbol", s), zap.Error(err))
			}
			if !ok {
				res.Skipped++
				continue
			}
		}
		if err := w.refreshOne(ctx, s); err != nil {
			res.Failed++
			w.log.Warn("refresh_worker.symbol_failed", zap.String("symbol", s), zap.Error(err))
			continue
		}
		res.Answered++
	}
	if w.rec != nil {
		w.rec.RefreshRun(started, res.Failed)
	}
	w.log.Info("refresh_worker.run_done",
		zap.Int("answered", res.Answered),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Duration("took", time.Since(started)),
	)
	return res
}

func (w *RefreshWorker) refreshOne(ctx context.Context, symbol string) error {
	ctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()
	_, err := w.svc.GetQuote(ctx, symbol, false)
	return err
}
