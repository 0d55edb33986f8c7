package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cardkit/internal/finder"
)

func TestQueryCache_ParsesOnce(t *testing.T) {
	store := newMockCacheManager[string, finder.Query](t)
	want := finder.Query{"key": finder.Eq("ace")}
	store.On("GetWithRefresh", mock.Anything, `{key: {$eq: ace}}`, time.Minute).Return(finder.Query(nil), false).Once()
	store.On("Set", mock.Anything, `{key: {$eq: ace}}`, want, time.Minute).Once()
	store.On("GetWithRefresh", mock.Anything, `{key: {$eq: ace}}`, time.Minute).Return(want, true).Once()
	qc := newQueryCache(store, time.Minute)

	got, err := qc.Parse(context.Background(), `  {key: {$eq: ace}}`)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = qc.Parse(context.Background(), `{key: {$eq: ace}} `)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestQueryCache_InMemory(t *testing.T) {
	qc := NewQueryCache(time.Minute)
	ctx := context.Background()

	q, err := qc.Parse(ctx, `{"size": {"$gte": 2}}`)
	require.NoError(t, err)
	require.Equal(t, finder.Query{"size": finder.Gte(2)}, q)

	_, err = qc.Parse(ctx, `{size: [unclosed`)
	require.Error(t, err)
}

func TestQueryCache_ZeroTTLDisablesCaching(t *testing.T) {
	store := newMockCacheManager[string, finder.Query](t)
	qc := newQueryCache(store, 0)

	q, err := qc.Parse(context.Background(), `{key: {$ne: x}}`)

	require.NoError(t, err)
	require.Equal(t, finder.Query{"key": finder.Ne("x")}, q)
}
