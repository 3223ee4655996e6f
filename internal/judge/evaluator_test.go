package judge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDispatcher struct {
	gotReqs []ExecutionRequest
	tokens  []Token
	err     error
	calls   int
}

func (d *fakeDispatcher) SubmitBatch(ctx context.Context, reqs []ExecutionRequest) ([]Token, error) {
	d.calls++
	d.gotReqs = reqs
	return d.tokens, d.err
}

type fakeAwaiter struct {
	gotTokens []Token
	results   []ExecutionResult
	err       error
}

func (a *fakeAwaiter) Await(ctx context.Context, tokens []Token) ([]ExecutionResult, error) {
	a.gotTokens = tokens
	return a.results, a.err
}

func TestEvaluateHappyPath(t *testing.T) {
	dispatcher := &fakeDispatcher{tokens: []Token{"t1", "t2"}}
	awaiter := &fakeAwaiter{results: []ExecutionResult{
		{Status: StatusAccepted, TimeMs: 10, MemoryKb: 100},
		{Status: StatusAccepted, TimeMs: 20, MemoryKb: 150},
	}}
	evaluator := NewEvaluator(dispatcher, awaiter, zap.NewNop())

	verdict, err := evaluator.Evaluate(context.Background(), "C++", "  int main(){}  ", []TestCase{
		{Stdin: "1", ExpectedOutput: "1"},
		{Stdin: "2", ExpectedOutput: "2"},
	})
	require.NoError(t, err)
	require.True(t, verdict.Accepted())
	require.Equal(t, 2, verdict.PassedCount)
	require.Equal(t, 30.0, verdict.TotalTimeMs)

	require.Len(t, dispatcher.gotReqs, 2)
	require.Equal(t, 105, dispatcher.gotReqs[0].LanguageID)
	require.Equal(t, "int main(){}", dispatcher.gotReqs[0].SourceCode)
	require.Equal(t, "2", dispatcher.gotReqs[1].Stdin)
	require.Equal(t, []Token{"t1", "t2"}, awaiter.gotTokens)
}

func TestEvaluateUnsupportedLanguageNeverDispatches(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	evaluator := NewEvaluator(dispatcher, &fakeAwaiter{}, zap.NewNop())

	_, err := evaluator.Evaluate(context.Background(), "haskell", "main = return ()", []TestCase{{}})
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
	require.Zero(t, dispatcher.calls)
}

func TestEvaluateNoTestCases(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	evaluator := NewEvaluator(dispatcher, &fakeAwaiter{}, zap.NewNop())

	_, err := evaluator.Evaluate(context.Background(), "python", "print(1)", nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
	require.Zero(t, dispatcher.calls)
}

func TestEvaluateDispatchErrorPropagates(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.Join(errors.New("503"), ErrDispatchFailed)}
	evaluator := NewEvaluator(dispatcher, &fakeAwaiter{}, zap.NewNop())

	_, err := evaluator.Evaluate(context.Background(), "python", "print(1)", []TestCase{{}})
	require.ErrorIs(t, err, ErrDispatchFailed)
}

func TestEvaluatePollErrorPropagates(t *testing.T) {
	dispatcher := &fakeDispatcher{tokens: []Token{"t1"}}
	awaiter := &fakeAwaiter{err: ErrPollTimeout}
	evaluator := NewEvaluator(dispatcher, awaiter, zap.NewNop())

	_, err := evaluator.Evaluate(context.Background(), "python", "print(1)", []TestCase{{}})
	require.ErrorIs(t, err, ErrPollTimeout)
}
