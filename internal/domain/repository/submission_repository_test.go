package repository

import (
	"errors"
	"testing"

	"algoarena/internal/common"

	"github.com/stretchr/testify/require"
)

func TestResolveFinalizeConflict(t *testing.T) {
	t.Run("terminal submission is a conflict", func(t *testing.T) {
		err := resolveFinalizeConflict("sub-1", nil)
		require.ErrorIs(t, err, common.ErrAlreadyFinalized)
	})

	t.Run("missing submission is not found", func(t *testing.T) {
		err := resolveFinalizeConflict("sub-1", common.ErrNotFound)
		require.ErrorIs(t, err, common.ErrNotFound)
		require.False(t, errors.Is(err, common.ErrAlreadyFinalized))
	})

	t.Run("check failure propagates", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		err := resolveFinalizeConflict("sub-1", dbErr)
		require.ErrorIs(t, err, dbErr)
		require.False(t, errors.Is(err, common.ErrAlreadyFinalized))
		require.False(t, errors.Is(err, common.ErrNotFound))
	})
}
