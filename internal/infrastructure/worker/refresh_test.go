package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quotes-service/internal/application"
	"quotes-service/internal/domain"

	"github.com/stretchr/testify/require"
)

type stubGetter struct {
	mu    sync.Mutex
	calls []string
	force []bool
	fail  map[string]error
}

func (s *stubGetter) GetQuote(_ context.Context, symbol string, forceRefresh bool) (domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, symbol)
	s.force = append(s.force, forceRefresh)
	if err := s.fail[symbol]; err != nil {
		return domain.QuoteRecord{}, err
	}
	return domain.QuoteRecord{Symbol: domain.Symbol(symbol)}, nil
}

func (s *stubGetter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubLock struct{ held map[string]bool }

func (l stubLock) TryAcquire(_ context.Context, key string) (bool, error) {
	if l.held[key] {
		return false, nil
	}
	return true, nil
}

type stubRecorder struct {
	runs     int
	failures int
}

func (r *stubRecorder) RefreshRun(_ time.Time, failures int) {
	r.runs++
	r.failures += failures
}

func TestRunOnce_OneCallPerSymbolNeverForced(t *testing.T) {
	g := &stubGetter{fail: map[string]error{
		"MSFT": &application.ExternalUnavailableError{Symbol: "MSFT", Cause: errors.New("down")},
	}}
	rec := &stubRecorder{}
	w, err := NewRefreshWorker(g, []string{"AAPL", "MSFT", "BTC-USD"}, "", WithRecorder(rec))
	require.NoError(t, err)

	res := w.RunOnce(context.Background())
	require.Equal(t, RunResult{Answered: 2, Failed: 1}, res)
	require.Equal(t, []string{"AAPL", "MSFT", "BTC-USD"}, g.calls)
	require.Equal(t, []bool{false, false, false}, g.force)
	require.Equal(t, 1, rec.runs)
	require.Equal(t, 1, rec.failures)
}

func TestRunOnce_SkipsSymbolsClaimedElsewhere(t *testing.T) {
	g := &stubGetter{}
	w, err := NewRefreshWorker(g, []string{"AAPL", "MSFT"}, "@every 1m",
		WithLocker(stubLock{held: map[string]bool{"refresh:AAPL": true}}))
	require.NoError(t, err)

	res := w.RunOnce(context.Background())
	require.Equal(t, RunResult{Answered: 1, Skipped: 1}, res)
	require.Equal(t, []string{"MSFT"}, g.calls)
}

func TestRunOnce_ClaimsNormalizedSymbol(t *testing.T) {
	g := &stubGetter{}
	w, err := NewRefreshWorker(g, []string{" aapl ", "msft", "  "}, "",
		WithLocker(stubLock{held: map[string]bool{"refresh:AAPL": true}}))
	require.NoError(t, err)

	res := w.RunOnce(context.Background())
	require.Equal(t, RunResult{Answered: 1, Failed: 1, Skipped: 1}, res)
	require.Equal(t, []string{"MSFT"}, g.calls)
}

func TestRunOnce_StopsWhenCanceled(t *testing.T) {
	g := &stubGetter{}
	w, err := NewRefreshWorker(g, []string{"AAPL", "MSFT"}, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := w.RunOnce(ctx)
	require.Equal(t, RunResult{}, res)
	require.Zero(t, g.callCount())
}

func TestNewRefreshWorker_RejectsBadSchedule(t *testing.T) {
	_, err := NewRefreshWorker(&stubGetter{}, nil, "every minute please")
	require.Error(t, err)
}

func TestStart_RunsOnScheduleUntilCanceled(t *testing.T) {
	g := &stubGetter{}
	w, err := NewRefreshWorker(g, []string{"AAPL"}, "@every 1s")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return g.callCount() >= 1 }, 5*time.Second, 50*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
