package judge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TestCase is one stdin/expected-output pair a candidate program is run
// against.
type TestCase struct {
	Stdin          string
	ExpectedOutput string
}

// Dispatcher sends a batch of execution requests to the judge.
type Dispatcher interface {
	SubmitBatch(ctx context.Context, reqs []ExecutionRequest) ([]Token, error)
}

// Awaiter blocks until a token set has terminal results.
type Awaiter interface {
	Await(ctx context.Context, tokens []Token) ([]ExecutionResult, error)
}

// Evaluator runs one full evaluation flow: resolve the language, build one
// execution request per test case, dispatch the batch, await terminal
// results, and reduce them into a verdict. Each inbound request gets its own
// flow; flows share nothing but the judge itself.
type Evaluator struct {
	dispatcher Dispatcher
	awaiter    Awaiter
	log        *zap.Logger
}

func NewEvaluator(dispatcher Dispatcher, awaiter Awaiter, log *zap.Logger) *Evaluator {
	return &Evaluator{dispatcher: dispatcher, awaiter: awaiter, log: log}
}

// Evaluate judges sourceCode (written in language) against the given test
// cases. The language must resolve before anything is dispatched, so an
// unsupported language never reaches the judge.
func (e *Evaluator) Evaluate(ctx context.Context, language, sourceCode string, cases []TestCase) (Verdict, error) {
	languageID, err := LanguageID(language)
	if err != nil {
		return Verdict{}, err
	}
	if len(cases) == 0 {
		return Verdict{}, fmt.Errorf("no test cases to evaluate: %w", ErrEmptyBatch)
	}

	reqs := make([]ExecutionRequest, 0, len(cases))
	for _, tc := range cases {
		reqs = append(reqs, ExecutionRequest{
			LanguageID:     languageID,
			SourceCode:     strings.TrimSpace(sourceCode),
			Stdin:          tc.Stdin,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}

	tokens, err := e.dispatcher.SubmitBatch(ctx, reqs)
	if err != nil {
		return Verdict{}, err
	}
	e.log.Debug("batch dispatched",
		zap.String("language", language),
		zap.Int("test_cases", len(cases)))

	results, err := e.awaiter.Await(ctx, tokens)
	if err != nil {
		return Verdict{}, err
	}
	return Reduce(results)
}
