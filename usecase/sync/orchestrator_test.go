package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/rentals/domain"
)

type item struct {
	ID   domain.ID
	Name string
}

// memStore is a Store whose List can be held open to observe in-flight calls.
type memStore struct {
	items   []item
	calls   []string
	hold    chan struct{}
	entered chan struct{}
	failOn  string
}

func (s *memStore) List(context.Context) ([]item, error) {
	s.calls = append(s.calls, "list")
	if s.hold != nil {
		s.entered <- struct{}{}
		<-s.hold
	}
	if s.failOn == "list" {
		return nil, errors.New("boom")
	}
	out := make([]item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *memStore) Save(_ context.Context, it item) (item, error) {
	s.calls = append(s.calls, "save")
	if s.failOn == "save" {
		return item{}, &domain.TransportError{Method: "POST", Path: "/x", StatusCode: 500}
	}
	if !it.ID.IsSet() {
		it.ID = domain.NewID(int64(len(s.items) + 1))
		s.items = append(s.items, it)
		return it, nil
	}
	for i := range s.items {
		if s.items[i].ID == it.ID {
			s.items[i] = it
		}
	}
	return it, nil
}

func (s *memStore) Delete(_ context.Context, id domain.ID) error {
	s.calls = append(s.calls, "delete")
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrPropertyNotFound
}

func TestMutationRequiresLoad(t *testing.T) {
	store := &memStore{}
	o := New[item]("items", store, nil)
	ctx := context.Background()

	_, err := o.Submit(ctx, item{Name: "a"})
	assert.ErrorIs(t, err, domain.ErrSnapshotStale)
	assert.ErrorIs(t, o.Remove(ctx, domain.NewID(1)), domain.ErrSnapshotStale)
	assert.Empty(t, store.calls)

	_, err = o.LoadAll(ctx)
	require.NoError(t, err)
	assert.True(t, o.Fresh())

	saved, err := o.Submit(ctx, item{Name: "a"})
	require.NoError(t, err)
	assert.True(t, saved.ID.IsSet())
	assert.False(t, o.Fresh())

	// a second mutation without reloading is refused
	_, err = o.Submit(ctx, item{Name: "b"})
	assert.ErrorIs(t, err, domain.ErrSnapshotStale)

	items, err := o.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	require.NoError(t, o.Remove(ctx, saved.ID))
	assert.Equal(t, []string{"list", "save", "list", "delete"}, store.calls)
}

func TestLoadAllAlwaysHitsStore(t *testing.T) {
	store := &memStore{items: []item{{ID: domain.NewID(1), Name: "a"}}}
	o := New[item]("items", store, nil)

	for i := 0; i < 3; i++ {
		_, err := o.LoadAll(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, store.calls, 3)
}

func TestFailedMutationStillRequiresReload(t *testing.T) {
	store := &memStore{failOn: "save"}
	o := New[item]("items", store, nil)
	ctx := context.Background()

	_, err := o.LoadAll(ctx)
	require.NoError(t, err)

	_, err = o.Submit(ctx, item{Name: "a"})
	assert.True(t, domain.IsKind(err, domain.KindTransport))

	_, err = o.Submit(ctx, item{Name: "a"})
	assert.ErrorIs(t, err, domain.ErrSnapshotStale)
}

func TestFailedLoadDoesNotRefreshSnapshot(t *testing.T) {
	store := &memStore{failOn: "list"}
	o := New[item]("items", store, nil)

	_, err := o.LoadAll(context.Background())
	require.Error(t, err)
	assert.False(t, o.Fresh())
}

func TestCallsRefusedWhileLoadInFlight(t *testing.T) {
	store := &memStore{hold: make(chan struct{}), entered: make(chan struct{})}
	o := New[item]("items", store, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := o.LoadAll(ctx)
		done <- err
	}()
	<-store.entered

	_, err := o.LoadAll(ctx)
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)
	_, err = o.Submit(ctx, item{Name: "a"})
	assert.ErrorIs(t, err, domain.ErrMutationInFlight)

	close(store.hold)
	require.NoError(t, <-done)
	assert.True(t, o.Fresh())
}

func TestSubmitAllStopsAtFirstFailure(t *testing.T) {
	store := &memStore{}
	o := New[item]("items", store, nil)
	ctx := context.Background()

	_, err := o.LoadAll(ctx)
	require.NoError(t, err)

	saved, err := o.SubmitAll(ctx, []item{{Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	_, err = o.LoadAll(ctx)
	require.NoError(t, err)
	err = o.Remove(ctx, saved[0].ID, domain.NewID(99), saved[1].ID)
	assert.Error(t, err)
	assert.Len(t, store.items, 1)
}
