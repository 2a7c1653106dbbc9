package dbpkg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestDetach(t *testing.T) {
	parent, cancel := context.WithTimeout(context.WithValue(context.Background(), ctxKey{}, "req-1"), time.Minute)

	ctx := Detach(parent)
	cancel()

	require.ErrorIs(t, parent.Err(), context.Canceled)

	require.NoError(t, ctx.Err())
	require.Nil(t, ctx.Done())
	require.Equal(t, "req-1", ctx.Value(ctxKey{}))

	_, ok := ctx.Deadline()
	require.False(t, ok)
}
