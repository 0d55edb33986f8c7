package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K ~string, V any] struct {
	mock.Mock
}

func newMockCacheManager[K ~string, V any](t *testing.T) *mockCacheManager[K, V] {
	m := &mockCacheManager[K, V]{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetMultiple(ctx context.Context, keys []K) (map[K]V, bool) {
	args := m.Called(ctx, keys)
	return args.Get(0).(map[K]V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCacheManager[K, V]) Len() int {
	return m.Called().Int(0)
}

type lookup struct {
	Rank int
}

func rankLoader(calls *int) func(context.Context, lookup) (exampleCard, error) {
	return func(_ context.Context, in lookup) (exampleCard, error) {
		*calls++
		if in.Rank <= 0 {
			return exampleCard{}, errors.New("no such rank")
		}
		return exampleCard{Rank: in.Rank}, nil
	}
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	store := newMockCacheManager[string, exampleCard](t)
	calls := 0
	rt := NewReadThroughCache[string, exampleCard, lookup](store, rankLoader(&calls), true)

	got, err := rt.Get(context.Background(), "ace", lookup{Rank: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, exampleCard{Rank: 1}, got)

	got, err = rt.GetWithRefresh(context.Background(), "ace", lookup{Rank: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, exampleCard{Rank: 1}, got)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	store := newMockCacheManager[string, exampleCard](t)
	store.On("Get", mock.Anything, "ace").Return(exampleCard{Rank: 1, Suit: "cached"}, true).Once()
	calls := 0
	rt := NewReadThroughCache[string, exampleCard, lookup](store, rankLoader(&calls), false)

	got, err := rt.Get(context.Background(), "ace", lookup{Rank: 1}, time.Minute)

	require.NoError(t, err)
	require.Equal(t, "cached", got.Suit)
	require.Zero(t, calls)
}

func TestReadThroughCache_Get_MissLoadsAndStores(t *testing.T) {
	store := newMockCacheManager[string, exampleCard](t)
	store.On("Get", mock.Anything, "ace").Return(exampleCard{}, false).Once()
	store.On("Set", mock.Anything, "ace", exampleCard{Rank: 1}, time.Minute).Once()
	calls := 0
	rt := NewReadThroughCache[string, exampleCard, lookup](store, rankLoader(&calls), false)

	got, err := rt.Get(context.Background(), "ace", lookup{Rank: 1}, time.Minute)

	require.NoError(t, err)
	require.Equal(t, exampleCard{Rank: 1}, got)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_Get_LoadErrorIsNotCached(t *testing.T) {
	store := newMockCacheManager[string, exampleCard](t)
	store.On("Get", mock.Anything, "zero").Return(exampleCard{}, false).Once()
	calls := 0
	rt := NewReadThroughCache[string, exampleCard, lookup](store, rankLoader(&calls), false)

	_, err := rt.Get(context.Background(), "zero", lookup{Rank: 0}, time.Minute)

	require.EqualError(t, err, "no such rank")
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh(t *testing.T) {
	store := newMockCacheManager[string, exampleCard](t)
	store.On("GetWithRefresh", mock.Anything, "ace", time.Minute).Return(exampleCard{}, false).Once()
	store.On("Set", mock.Anything, "ace", exampleCard{Rank: 1}, time.Minute).Once()
	store.On("GetWithRefresh", mock.Anything, "ace", time.Minute).Return(exampleCard{Rank: 1}, true).Once()
	calls := 0
	rt := NewReadThroughCache[string, exampleCard, lookup](store, rankLoader(&calls), false)

	for range 2 {
		got, err := rt.GetWithRefresh(context.Background(), "ace", lookup{Rank: 1}, time.Minute)
		require.NoError(t, err)
		require.Equal(t, exampleCard{Rank: 1}, got)
	}
	require.Equal(t, 1, calls)
}
