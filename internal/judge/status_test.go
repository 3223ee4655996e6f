package judge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTerminal(t *testing.T) {
	require.False(t, StatusInQueue.Terminal())
	require.False(t, StatusProcessing.Terminal())

	for s := StatusAccepted; s <= StatusExecFormatError; s++ {
		require.True(t, s.Terminal(), "status %d should be terminal", s)
	}
	require.True(t, Status(99).Terminal())
}

func TestStatusLabel(t *testing.T) {
	require.Equal(t, "Accepted", StatusAccepted.Label())
	require.Equal(t, "Wrong Answer", StatusWrongAnswer.Label())
	require.Equal(t, "Time Limit Exceeded", StatusTimeLimitExceeded.Label())
	require.Equal(t, UnknownStatusLabel, Status(99).Label())
	require.Equal(t, UnknownStatusLabel, Status(0).Label())
}
