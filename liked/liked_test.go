// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package liked

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "liked:test-device"

// failingStorage simulates an unavailable durable store
type failingStorage struct {
	getErr error
	putErr error
	puts   int
}

func (f *failingStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, f.getErr
}

func (f *failingStorage) Put(ctx context.Context, key string, value []byte) error {
	f.puts++
	return f.putErr
}

func TestAddRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, NewMemoryStorage(), testKey)

	s.Add(ctx, "a")
	s.Add(ctx, "b")
	s.Add(ctx, "a")
	assert.Equal(t, []string{"a", "b"}, s.List())
	assert.True(t, s.Contains("a"))

	s.Remove(ctx, "a")
	s.Remove(ctx, "a")
	assert.Equal(t, []string{"b"}, s.List())
	assert.False(t, s.Contains("a"))
	assert.Equal(t, 1, s.Len())
}

func TestRoundTripThroughStorage(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	s := Load(ctx, storage, testKey)
	s.Add(ctx, "policy-1")
	s.Add(ctx, "policy-2")

	reloaded := Load(ctx, storage, testKey)
	assert.True(t, reloaded.Contains("policy-1"))
	assert.Equal(t, []string{"policy-1", "policy-2"}, reloaded.List())

	reloaded.Remove(ctx, "policy-1")

	again := Load(ctx, storage, testKey)
	assert.False(t, again.Contains("policy-1"))
	assert.True(t, again.Contains("policy-2"))
}

func TestPersistedFormatIsJSONArray(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	s := Load(ctx, storage, testKey)
	s.Add(ctx, "x")
	s.Remove(ctx, "x")

	raw, ok, err := storage.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestMalformedStoredValue(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Put(ctx, testKey, []byte(`{not json`)))

	s := Load(ctx, storage, testKey)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Degraded())
}

func TestDuplicateStoredIDsCollapse(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	require.NoError(t, storage.Put(ctx, testKey, []byte(`["a","b","a",""]`)))

	s := Load(ctx, storage, testKey)
	assert.Equal(t, []string{"a", "b"}, s.List())
}

func TestStorageUnavailableDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{
		getErr: errors.New("disk on fire"),
		putErr: errors.New("disk on fire"),
	}

	s := Load(ctx, storage, testKey)
	assert.True(t, s.Degraded())

	s.Add(ctx, "a")
	assert.True(t, s.Contains("a"), "in-memory view should keep the change")
	assert.True(t, s.Degraded())
	assert.Equal(t, 1, storage.puts)

	// No-op mutations do not touch storage
	s.Add(ctx, "a")
	s.Remove(ctx, "missing")
	assert.Equal(t, 1, storage.puts)
}

func TestDegradedClearsAfterSuccessfulWrite(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{putErr: errors.New("temporarily down")}

	s := Load(ctx, storage, testKey)
	s.Add(ctx, "a")
	require.True(t, s.Degraded())

	storage.putErr = nil
	s.Add(ctx, "b")
	assert.False(t, s.Degraded())
}

func TestExclusion(t *testing.T) {
	ctx := context.Background()
	s := Load(ctx, NewMemoryStorage(), testKey)
	s.Add(ctx, "a")

	ex := s.Exclusion()
	ex["b"] = true

	assert.True(t, ex["a"])
	assert.False(t, s.Contains("b"), "exclusion map must be a copy")
}

func TestRegistrySharesOneSetPerKey(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	reg := NewRegistry(storage)

	session := reg.Get(ctx, testKey)
	view := reg.Get(ctx, testKey)
	require.Same(t, session, view)
	assert.NotSame(t, session, reg.Get(ctx, "liked:other-device"))

	// A removal from one holder is not undone by the next add from another
	session.Add(ctx, "p5")
	view.Remove(ctx, "p5")
	session.Add(ctx, "p6")

	assert.Equal(t, []string{"p6"}, Load(ctx, storage, testKey).List())
}

func TestRegistryRetriesUnavailableStorage(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{getErr: errors.New("database is locked")}
	reg := NewRegistry(storage)

	first := reg.Get(ctx, testKey)
	assert.True(t, first.Degraded())

	storage.getErr = nil
	second := reg.Get(ctx, testKey)
	assert.NotSame(t, first, second)
	assert.False(t, second.Degraded())
	assert.Same(t, second, reg.Get(ctx, testKey))
}

func TestSetConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()
	s := NewRegistry(storage).Get(ctx, testKey)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(ctx, fmt.Sprintf("p%d", i))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())
	assert.Len(t, Load(ctx, storage, testKey).List(), 20)
}
