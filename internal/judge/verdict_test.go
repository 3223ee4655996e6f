package judge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReduceAllAccepted(t *testing.T) {
	results := []ExecutionResult{
		{Status: StatusAccepted, TimeMs: 10, MemoryKb: 100},
		{Status: StatusAccepted, TimeMs: 20, MemoryKb: 150},
		{Status: StatusAccepted, TimeMs: 30, MemoryKb: 120},
	}

	verdict, err := Reduce(results)
	require.NoError(t, err)
	require.True(t, verdict.Accepted())
	require.Equal(t, StatusAccepted, verdict.Status)
	require.Equal(t, 3, verdict.PassedCount)
	require.Equal(t, 3, verdict.TotalCount)
	require.Equal(t, 60.0, verdict.TotalTimeMs)
	require.Equal(t, 150, verdict.MaxMemoryKb)
	require.Empty(t, verdict.ErrorMessage)
}

func TestReduceFirstFailureWins(t *testing.T) {
	results := []ExecutionResult{
		{Status: StatusAccepted, TimeMs: 5, MemoryKb: 90},
		{Status: StatusWrongAnswer, Stderr: "mismatch"},
		{Status: StatusAccepted, TimeMs: 7, MemoryKb: 110},
	}

	verdict, err := Reduce(results)
	require.NoError(t, err)
	require.False(t, verdict.Accepted())
	require.Equal(t, StatusWrongAnswer, verdict.Status)
	require.Equal(t, 2, verdict.PassedCount)
	require.Equal(t, 3, verdict.TotalCount)
	require.Equal(t, "mismatch", verdict.ErrorMessage)
}

func TestReduceLaterFailureDoesNotOverride(t *testing.T) {
	results := []ExecutionResult{
		{Status: StatusTimeLimitExceeded},
		{Status: StatusRuntimeErrorSIGSEGV, Stderr: "segfault"},
		{Status: StatusAccepted, TimeMs: 3, MemoryKb: 50},
	}

	verdict, err := Reduce(results)
	require.NoError(t, err)
	require.Equal(t, StatusTimeLimitExceeded, verdict.Status)
	require.Equal(t, "Time Limit Exceeded", verdict.ErrorMessage)
	require.Equal(t, 1, verdict.PassedCount)
}

func TestReduceFailureWithoutStderrUsesLabel(t *testing.T) {
	verdict, err := Reduce([]ExecutionResult{{Status: StatusCompilationError}})
	require.NoError(t, err)
	require.Equal(t, "Compilation Error", verdict.ErrorMessage)
}

func TestReduceUnknownStatus(t *testing.T) {
	verdict, err := Reduce([]ExecutionResult{
		{Status: StatusAccepted, TimeMs: 1, MemoryKb: 10},
		{Status: Status(99)},
	})
	require.NoError(t, err)
	require.False(t, verdict.Accepted())
	require.Equal(t, Status(99), verdict.Status)
	require.Equal(t, UnknownStatusLabel, verdict.ErrorMessage)
}

func TestReduceEmptyInput(t *testing.T) {
	_, err := Reduce(nil)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

// TestReduceProperties checks the reducer's invariants over randomized status
// sequences: the pass count matches the accepted results exactly, acceptance
// holds iff every case passed, the reported error belongs to the earliest
// failure, and time/memory accumulate over accepted cases only.
func TestReduceProperties(t *testing.T) {
	statuses := []Status{
		StatusAccepted,
		StatusWrongAnswer,
		StatusTimeLimitExceeded,
		StatusCompilationError,
		StatusRuntimeErrorNZEC,
		StatusInternalError,
		Status(42), // outside the known enum
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(12)
		results := make([]ExecutionResult, 0, n)
		for j := 0; j < n; j++ {
			results = append(results, ExecutionResult{
				Status:   statuses[rng.Intn(len(statuses))],
				TimeMs:   float64(rng.Intn(2000)),
				MemoryKb: rng.Intn(512000),
				Stderr:   "err",
			})
		}

		verdict, err := Reduce(results)
		require.NoError(t, err)

		accepted := 0
		var wantTime float64
		wantMemory := 0
		firstFailure := -1
		for j, r := range results {
			if r.Status == StatusAccepted {
				accepted++
				wantTime += r.TimeMs
				if r.MemoryKb > wantMemory {
					wantMemory = r.MemoryKb
				}
			} else if firstFailure == -1 {
				firstFailure = j
			}
		}

		require.Equal(t, accepted, verdict.PassedCount)
		require.Equal(t, n, verdict.TotalCount)
		require.Equal(t, accepted == n, verdict.Accepted())
		require.Equal(t, wantTime, verdict.TotalTimeMs)
		require.Equal(t, wantMemory, verdict.MaxMemoryKb)
		if firstFailure >= 0 {
			require.Equal(t, results[firstFailure].Status, verdict.Status)
		}
	}
}
