package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/stockflow/internal/domain"
)

func TestNotificationReadState(t *testing.T) {
	t.Parallel()
	f, ctx := newFixture(t)
	f.user(t, ctx, "ann", domain.Customer)
	f.user(t, ctx, "ben", domain.Customer)

	first, err := f.notes.Notify(ctx, "ann", "first")
	require.NoError(t, err)
	_, err = f.notes.Notify(ctx, "ann", "second")
	require.NoError(t, err)

	_, err = f.notes.Notify(ctx, "ann", "   ")
	assert.True(t, errors.Is(err, domain.ErrMissingFields))

	unread, err := f.notes.Unread(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	err = f.notes.MarkRead(ctx, "ben", first.ID)
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))
	err = f.notes.MarkRead(ctx, "ann", "missing")
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))

	require.NoError(t, f.notes.MarkRead(ctx, "ann", first.ID))
	unread, err = f.notes.Unread(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	n, err := f.notes.MarkAllRead(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := f.notes.List(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, item := range list {
		assert.True(t, item.Read)
	}
}
