package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ResultFetcher fetches the judge's current results for a token set.
type ResultFetcher interface {
	FetchBatch(ctx context.Context, tokens []Token) ([]ExecutionResult, error)
}

// Poller blocks until every token in a batch has reached a terminal status.
// Total wait is bounded: a judge that never finishes a case surfaces as
// ErrPollTimeout instead of hanging the calling request forever.
type Poller struct {
	fetcher      ResultFetcher
	interval     time.Duration
	maxWait      time.Duration
	fetchRetries uint64
	log          *zap.Logger
}

func NewPoller(fetcher ResultFetcher, interval, maxWait time.Duration, fetchRetries uint64, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if maxWait <= 0 {
		maxWait = 2 * time.Minute
	}
	return &Poller{
		fetcher:      fetcher,
		interval:     interval,
		maxWait:      maxWait,
		fetchRetries: fetchRetries,
		log:          log,
	}
}

// Await fetches results for the full token set until all of them are
// terminal, then returns them in token order. On ErrPollTimeout the most
// recently fetched (partial) results are returned alongside the error so the
// caller can report an inconclusive outcome instead of nothing.
func (p *Poller) Await(ctx context.Context, tokens []Token) ([]ExecutionResult, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyBatch
	}

	deadline := time.NewTimer(p.maxWait)
	defer deadline.Stop()

	var last []ExecutionResult
	for {
		results, err := p.fetchWithRetry(ctx, tokens)
		if err != nil {
			return last, err
		}
		last = results

		pending := countPending(results)
		if pending == 0 {
			return results, nil
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("awaiting %d results: %w", len(tokens), ctx.Err())
		case <-deadline.C:
			p.log.Warn("gave up waiting for judge results",
				zap.Int("pending", pending),
				zap.Int("total", len(tokens)),
				zap.Duration("max_wait", p.maxWait))
			return last, fmt.Errorf("%d of %d results still pending after %s: %w",
				pending, len(tokens), p.maxWait, ErrPollTimeout)
		case <-time.After(p.interval):
		}
	}
}

// fetchWithRetry absorbs transient fetch failures with exponential backoff.
// Running out of retries is a PollFailed, distinct from a timeout: the judge
// is unreachable rather than merely slow.
func (p *Poller) fetchWithRetry(ctx context.Context, tokens []Token) ([]ExecutionResult, error) {
	var results []ExecutionResult
	operation := func() error {
		fetched, err := p.fetcher.FetchBatch(ctx, tokens)
		if err != nil {
			p.log.Warn("result fetch failed, will retry", zap.Error(err))
			return err
		}
		results = fetched
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.fetchRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("fetching batch results: %v: %w", err, ErrPollFailed)
	}
	return results, nil
}

func countPending(results []ExecutionResult) int {
	pending := 0
	for _, r := range results {
		if !r.Status.Terminal() {
			pending++
		}
	}
	return pending
}
