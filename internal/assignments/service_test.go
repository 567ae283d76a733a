package assignments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

type pairKey struct {
	userID     int64
	propertyID int64
}

type mockAssignmentRepo struct {
	pairs map[pairKey]bool
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{pairs: map[pairKey]bool{}}
}

func (m *mockAssignmentRepo) ListForUser(ctx context.Context, userID int64) ([]Assignment, error) {
	list := []Assignment{}
	for key := range m.pairs {
		if key.userID == userID {
			list = append(list, Assignment{UserID: key.userID, PropertyID: key.propertyID})
		}
	}
	return list, nil
}

func (m *mockAssignmentRepo) Create(ctx context.Context, userID, propertyID int64) (bool, error) {
	key := pairKey{userID: userID, propertyID: propertyID}
	if m.pairs[key] {
		return false, nil
	}
	m.pairs[key] = true
	return true, nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, userID, propertyID int64) error {
	key := pairKey{userID: userID, propertyID: propertyID}
	if !m.pairs[key] {
		return shared.ErrNotFound
	}
	delete(m.pairs, key)
	return nil
}

type idSet map[int64]bool

func (s idSet) Exists(ctx context.Context, id int64) (bool, error) {
	return s[id], nil
}

func newTestService(repo *mockAssignmentRepo, userIDs, propertyIDs []int64) *Service {
	users := idSet{}
	for _, id := range userIDs {
		users[id] = true
	}
	properties := idSet{}
	for _, id := range propertyIDs {
		properties[id] = true
	}
	return NewService(repo, users, properties)
}

func TestAssignCreatesPair(t *testing.T) {
	repo := newMockAssignmentRepo()
	svc := newTestService(repo, []int64{7}, []int64{3})

	created, err := svc.Assign(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, created)

	list, err := svc.ListForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].PropertyID)
}

func TestAssignDuplicateIsNoOp(t *testing.T) {
	repo := newMockAssignmentRepo()
	svc := newTestService(repo, []int64{7}, []int64{3})

	created, err := svc.Assign(context.Background(), 7, 3)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Assign(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.False(t, created, "repeat of an existing pair must succeed without creating")

	list, err := svc.ListForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssignUnknownTargets(t *testing.T) {
	repo := newMockAssignmentRepo()
	svc := newTestService(repo, []int64{7}, []int64{3})

	_, err := svc.Assign(context.Background(), 99, 3)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Assign(context.Background(), 7, 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	list, err := svc.ListForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUnassign(t *testing.T) {
	repo := newMockAssignmentRepo()
	svc := newTestService(repo, []int64{7}, []int64{3})

	created, err := svc.Assign(context.Background(), 7, 3)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, svc.Unassign(context.Background(), 7, 3))

	list, err := svc.ListForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = svc.Unassign(context.Background(), 7, 3)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
