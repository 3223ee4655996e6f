package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedFetcher replays a fixed sequence of responses, repeating the last
// entry once the script runs out.
type scriptedFetcher struct {
	script []fetchStep
	calls  int
}

type fetchStep struct {
	results []ExecutionResult
	err     error
}

func (f *scriptedFetcher) FetchBatch(ctx context.Context, tokens []Token) ([]ExecutionResult, error) {
	step := f.script[min(f.calls, len(f.script)-1)]
	f.calls++
	return step.results, step.err
}

func newTestPoller(fetcher ResultFetcher, maxWait time.Duration) *Poller {
	return NewPoller(fetcher, time.Millisecond, maxWait, 2, zap.NewNop())
}

func TestAwaitReturnsWhenAllTerminal(t *testing.T) {
	pendingBatch := []ExecutionResult{{Status: StatusProcessing}, {Status: StatusAccepted}}
	doneBatch := []ExecutionResult{{Status: StatusAccepted, TimeMs: 4}, {Status: StatusWrongAnswer}}
	fetcher := &scriptedFetcher{script: []fetchStep{
		{results: pendingBatch},
		{results: pendingBatch},
		{results: doneBatch},
	}}

	results, err := newTestPoller(fetcher, time.Second).Await(context.Background(), []Token{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, doneBatch, results)
	require.Equal(t, 3, fetcher.calls)
}

func TestAwaitRetriesTransientFetchFailures(t *testing.T) {
	done := []ExecutionResult{{Status: StatusAccepted}}
	fetcher := &scriptedFetcher{script: []fetchStep{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{results: done},
	}}

	results, err := newTestPoller(fetcher, time.Second).Await(context.Background(), []Token{"a"})
	require.NoError(t, err)
	require.Equal(t, done, results)
}

func TestAwaitExhaustedRetriesIsPollFailed(t *testing.T) {
	fetcher := &scriptedFetcher{script: []fetchStep{{err: errors.New("judge is down")}}}

	_, err := newTestPoller(fetcher, time.Second).Await(context.Background(), []Token{"a"})
	require.ErrorIs(t, err, ErrPollFailed)
	require.Equal(t, 3, fetcher.calls) // initial attempt + 2 retries
}

func TestAwaitTimesOutWithPartialResults(t *testing.T) {
	stuck := []ExecutionResult{{Status: StatusAccepted}, {Status: StatusInQueue}}
	fetcher := &scriptedFetcher{script: []fetchStep{{results: stuck}}}

	results, err := newTestPoller(fetcher, 20*time.Millisecond).Await(context.Background(), []Token{"a", "b"})
	require.ErrorIs(t, err, ErrPollTimeout)
	require.Equal(t, stuck, results)
}

func TestAwaitHonorsContextCancellation(t *testing.T) {
	stuck := []ExecutionResult{{Status: StatusProcessing}}
	fetcher := &scriptedFetcher{script: []fetchStep{{results: stuck}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPoller(fetcher, time.Minute).Await(ctx, []Token{"a"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAwaitEmptyTokenSet(t *testing.T) {
	_, err := newTestPoller(&scriptedFetcher{script: []fetchStep{{}}}, time.Second).Await(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}
