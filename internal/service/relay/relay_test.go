package relay

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	pending map[int64]int64
}

func (f *fakeStore) PendingReply(_ context.Context, operatorID int64) (int64, error) {
	return f.pending[operatorID], nil
}

func (f *fakeStore) SetPendingReply(_ context.Context, operatorID, target int64) error {
	f.pending[operatorID] = target
	return nil
}

func newRelay() (*Service, *fakeStore) {
	store := &fakeStore{pending: map[int64]int64{}}
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), store, 700), store
}

func TestIsOperator(t *testing.T) {
	s, _ := newRelay()
	assert.True(t, s.IsOperator(700))
	assert.False(t, s.IsOperator(701))

	unset := New(slog.New(slog.NewTextHandler(io.Discard, nil)), &fakeStore{}, 0)
	assert.False(t, unset.IsOperator(0))
}

func TestReplyRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, store := newRelay()

	_, ok, err := s.TakePending(ctx, 700)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.BeginReply(ctx, 700, 42))
	assert.Equal(t, int64(42), store.pending[700])

	target, ok, err := s.TakePending(ctx, 700)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(42), target)
	assert.Zero(t, store.pending[700])

	_, ok, err = s.TakePending(ctx, 700)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBeginReply_RejectsNonOperator(t *testing.T) {
	s, store := newRelay()

	assert.Error(t, s.BeginReply(context.Background(), 5, 42))
	assert.Empty(t, store.pending)

	_, ok, err := s.TakePending(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, ok)
}
