package merge

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bazar/internal/identity"
)

type fakeItem struct {
	ProductID int64
	Quantity  int
	AddedAt   time.Time
}

func (i fakeItem) Key() int64 { return i.ProductID }

type fakeCollection struct {
	owner identity.Owner
	items map[int64]fakeItem
}

type fakeStore struct {
	nextID      int64
	collections map[int64]*fakeCollection
	err         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, collections: make(map[int64]*fakeCollection)}
}

func (s *fakeStore) FindByOwner(_ context.Context, o identity.Owner) (int64, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	for id, c := range s.collections {
		if c.owner == o {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (s *fakeStore) Items(_ context.Context, collectionID int64) ([]fakeItem, error) {
	c, ok := s.collections[collectionID]
	if !ok {
		return nil, fmt.Errorf("collection %d not found", collectionID)
	}
	out := make([]fakeItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	return out, nil
}

func (s *fakeStore) Insert(_ context.Context, collectionID int64, item fakeItem) (bool, error) {
	c, ok := s.collections[collectionID]
	if !ok {
		return false, fmt.Errorf("collection %d not found", collectionID)
	}
	if _, exists := c.items[item.ProductID]; exists {
		return false, nil
	}
	c.items[item.ProductID] = item
	return true, nil
}

func (s *fakeStore) DeleteCollection(_ context.Context, collectionID int64) error {
	delete(s.collections, collectionID)
	return nil
}

func (s *fakeStore) Repoint(_ context.Context, collectionID, userID int64) error {
	c, ok := s.collections[collectionID]
	if !ok {
		return fmt.Errorf("collection %d not found", collectionID)
	}
	c.owner = identity.User(userID)
	return nil
}

func (s *fakeStore) Touch(context.Context, int64) error { return nil }

func (s *fakeStore) seed(t *testing.T, o identity.Owner, items ...fakeItem) int64 {
	t.Helper()
	id := s.nextID
	s.nextID++
	c := &fakeCollection{owner: o, items: make(map[int64]fakeItem)}
	for _, it := range items {
		c.items[it.ProductID] = it
	}
	s.collections[id] = c
	return id
}

func newEngine(s *fakeStore) *Engine[fakeItem] {
	return NewEngine[fakeItem](s, zap.NewNop().Sugar())
}

func TestMerge_NoGuestCollection_IsNoOp(t *testing.T) {
	store := newFakeStore()
	userID := store.seed(t, identity.User(7), fakeItem{ProductID: 1, Quantity: 2})

	err := newEngine(store).Merge(context.Background(), identity.Session("s1"), identity.User(7))
	require.NoError(t, err)

	assert.Len(t, store.collections, 1)
	assert.Len(t, store.collections[userID].items, 1)
}

func TestMerge_UserHasNoCollection_AdoptsGuest(t *testing.T) {
	store := newFakeStore()
	added := time.Now().Add(-time.Hour)
	guestID := store.seed(t, identity.Session("s1"),
		fakeItem{ProductID: 1, Quantity: 3, AddedAt: added},
	)

	err := newEngine(store).Merge(context.Background(), identity.Session("s1"), identity.User(7))
	require.NoError(t, err)

	c, ok := store.collections[guestID]
	require.True(t, ok, "guest collection should survive as the user's")
	assert.Equal(t, identity.User(7), c.owner)
	assert.Equal(t, added, c.items[1].AddedAt, "original added time kept")
}

func TestMerge_MovesNonConflictingItems(t *testing.T) {
	store := newFakeStore()
	store.seed(t, identity.Session("s1"),
		fakeItem{ProductID: 1, Quantity: 2},
		fakeItem{ProductID: 2, Quantity: 1},
	)
	userID := store.seed(t, identity.User(7), fakeItem{ProductID: 3, Quantity: 5})

	err := newEngine(store).Merge(context.Background(), identity.Session("s1"), identity.User(7))
	require.NoError(t, err)

	assert.Len(t, store.collections, 1, "guest collection deleted")
	items := store.collections[userID].items
	assert.Len(t, items, 3)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 1, items[2].Quantity)
	assert.Equal(t, 5, items[3].Quantity)
}

func TestMerge_ConflictUserWins(t *testing.T) {
	store := newFakeStore()
	store.seed(t, identity.Session("s1"), fakeItem{ProductID: 1, Quantity: 2})
	userID := store.seed(t, identity.User(7), fakeItem{ProductID: 1, Quantity: 1})

	err := newEngine(store).Merge(context.Background(), identity.Session("s1"), identity.User(7))
	require.NoError(t, err)

	items := store.collections[userID].items
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[1].Quantity, "quantities must not be summed")
}

func TestMerge_Idempotent(t *testing.T) {
	store := newFakeStore()
	store.seed(t, identity.Session("s1"), fakeItem{ProductID: 1, Quantity: 2})
	userID := store.seed(t, identity.User(7), fakeItem{ProductID: 2, Quantity: 1})

	engine := newEngine(store)
	require.NoError(t, engine.Merge(context.Background(), identity.Session("s1"), identity.User(7)))
	require.NoError(t, engine.Merge(context.Background(), identity.Session("s1"), identity.User(7)))

	items := store.collections[userID].items
	assert.Len(t, items, 2)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, 1, items[2].Quantity)
}

func TestMerge_RejectsBadOwners(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store)

	err := engine.Merge(context.Background(), identity.User(1), identity.User(2))
	assert.ErrorIs(t, err, ErrBadOwners)

	err = engine.Merge(context.Background(), identity.Session("s1"), identity.Session("s2"))
	assert.ErrorIs(t, err, ErrBadOwners)
}

func TestMerge_GuestToLoginEndToEnd(t *testing.T) {
	store := newFakeStore()

	// Guest s1 adds product 1 with quantity 3, then logs in as user 1.
	store.seed(t, identity.Session("s1"), fakeItem{ProductID: 1, Quantity: 3})

	err := newEngine(store).Merge(context.Background(), identity.Session("s1"), identity.User(1))
	require.NoError(t, err)

	id, ok, err := store.FindByOwner(context.Background(), identity.User(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, store.collections[id].items[1].Quantity)

	// The session no longer resolves to anything.
	_, ok, err = store.FindByOwner(context.Background(), identity.Session("s1"))
	require.NoError(t, err)
	assert.False(t, ok)
}
