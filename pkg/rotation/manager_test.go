package rotation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	buckets   map[string]bool
	tags      map[string]map[string]string
	versioned map[string]bool
	emptied   []string
	failEmpty map[string]bool
}

func newFakeStore(names ...string) *fakeStore {
	s := &fakeStore{
		buckets:   map[string]bool{},
		tags:      map[string]map[string]string{},
		versioned: map[string]bool{},
		failEmpty: map[string]bool{},
	}
	for _, n := range names {
		s.buckets[n] = true
	}
	return s
}

func (s *fakeStore) ListBucketNames() ([]string, error) {
	var names []string
	for n := range s.buckets {
		names = append(names, n)
	}
	return names, nil
}

func (s *fakeStore) Exists(bucket string) (bool, error) { return s.buckets[bucket], nil }

func (s *fakeStore) Create(bucket string) error {
	s.buckets[bucket] = true
	return nil
}

func (s *fakeStore) EnableVersioning(bucket string) error {
	s.versioned[bucket] = true
	return nil
}

func (s *fakeStore) Tag(bucket string, tags map[string]string) error {
	s.tags[bucket] = tags
	return nil
}

func (s *fakeStore) Empty(bucket string) error {
	if s.failEmpty[bucket] {
		return errors.New("access denied")
	}
	s.emptied = append(s.emptied, bucket)
	return nil
}

func (s *fakeStore) Delete(bucket string) error {
	delete(s.buckets, bucket)
	return nil
}

func TestCreateNextFirstBucket(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, "fraud-or-not", "dev")

	created, fresh, err := m.CreateNext()
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "fraud-or-not-lambda-dev-000-000", created.String())
	assert.True(t, store.versioned[created.String()])
	assert.Equal(t, map[string]string{
		"Project":     "fraud-or-not",
		"Environment": "dev",
		"Purpose":     "lambda-deployment",
		"ManagedBy":   "bucket-rotation",
	}, store.tags[created.String()])
}

func TestCreateNextReusesExisting(t *testing.T) {
	store := newFakeStore("p-lambda-e-000-000")
	m := NewManager(store, "p", "e")

	// simulate concurrent creation of the proposed bucket
	store.buckets["p-lambda-e-000-001"] = true

	created, fresh, err := m.CreateNext()
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "p-lambda-e-000-001", created.String())
	// reuse must not touch versioning or tags
	assert.False(t, store.versioned[created.String()])
}

func TestRotateAndCreateCleansUp(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 12; i++ {
		b, err := FromOrdinal("p", "e", i)
		require.NoError(t, err)
		store.buckets[b.String()] = true
	}
	m := NewManager(store, "p", "e")

	created, deleted, err := m.RotateAndCreate()
	require.NoError(t, err)
	assert.Equal(t, "p-lambda-e-000-012", created.String())

	// 13 buckets after creation, retention 10 -> 3 oldest deleted
	require.Len(t, deleted, 3)
	assert.Contains(t, deleted, "p-lambda-e-000-000")
	assert.Contains(t, deleted, "p-lambda-e-000-002")
	assert.False(t, store.buckets["p-lambda-e-000-000"])
	assert.True(t, store.buckets["p-lambda-e-000-003"])
}

func TestRotateSkipsCleanupWhenBucketExisted(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 15; i++ {
		b, err := FromOrdinal("p", "e", i)
		require.NoError(t, err)
		store.buckets[b.String()] = true
	}
	// next proposal already present
	store.buckets["p-lambda-e-000-015"] = true

	m := NewManager(store, "p", "e")
	_, deleted, err := m.RotateAndCreate()
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Len(t, store.buckets, 16)
}

func TestCleanupContinuesOnFailure(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 13; i++ {
		b, err := FromOrdinal("p", "e", i)
		require.NoError(t, err)
		store.buckets[b.String()] = true
	}
	store.failEmpty["p-lambda-e-000-001"] = true

	m := NewManager(store, "p", "e")
	deleted, err := m.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, []string{"p-lambda-e-000-000", "p-lambda-e-000-002"}, deleted)
	// the failing bucket is skipped, not fatal
	assert.True(t, store.buckets["p-lambda-e-000-001"])
}

func TestCleanupUnderRetention(t *testing.T) {
	store := newFakeStore("p-lambda-e-000-000", "p-lambda-e-000-001")
	m := NewManager(store, "p", "e")
	deleted, err := m.Cleanup()
	require.NoError(t, err)
	assert.Empty(t, deleted)
	assert.Len(t, store.buckets, 2)
}

func TestCleanupIgnoresForeignBuckets(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 13; i++ {
		b, err := FromOrdinal("p", "e", i)
		require.NoError(t, err)
		store.buckets[b.String()] = true
	}
	for i := 0; i < 13; i++ {
		store.buckets[fmt.Sprintf("other-lambda-e-%03d-000", i)] = true
	}

	m := NewManager(store, "p", "e")
	deleted, err := m.Cleanup()
	require.NoError(t, err)
	require.Len(t, deleted, 3)
	for _, name := range deleted {
		assert.Contains(t, name, "p-lambda-e-")
	}
}
