package properties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/authz"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

type mockPropertyRepo struct {
	byID map[int64]Property
}

func (m *mockPropertyRepo) ListByIDs(ctx context.Context, ids []int64) ([]Property, error) {
	list := []Property{}
	for _, id := range ids {
		if property, ok := m.byID[id]; ok {
			list = append(list, property)
		}
	}
	return list, nil
}

func (m *mockPropertyRepo) FindByID(ctx context.Context, id int64) (Property, error) {
	property, ok := m.byID[id]
	if !ok {
		return Property{}, shared.ErrNotFound
	}
	return property, nil
}

func (m *mockPropertyRepo) Create(ctx context.Context, name, address string) (Property, error) {
	property := Property{ID: int64(len(m.byID) + 1), Name: name, Address: address}
	m.byID[property.ID] = property
	return property, nil
}

func (m *mockPropertyRepo) Update(ctx context.Context, id int64, name, address string) (Property, error) {
	property, ok := m.byID[id]
	if !ok {
		return Property{}, shared.ErrNotFound
	}
	property.Name = name
	property.Address = address
	m.byID[id] = property
	return property, nil
}

func (m *mockPropertyRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.byID[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mapScoper struct {
	byUser map[int64][]int64
}

func (s mapScoper) FilterToScope(ctx context.Context, p authz.Principal, candidates []int64) ([]int64, error) {
	scope := s.byUser[p.ID]
	if len(candidates) == 0 {
		return scope, nil
	}
	allowed := make(map[int64]struct{}, len(scope))
	for _, id := range scope {
		allowed[id] = struct{}{}
	}
	var out []int64
	for _, id := range candidates {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func newPropertyService() (*Service, *mockPropertyRepo) {
	repo := &mockPropertyRepo{byID: map[int64]Property{
		1: {ID: 1, Name: "North Lot"},
		2: {ID: 2, Name: "South Garage"},
	}}
	scoper := mapScoper{byUser: map[int64][]int64{
		7: {1},
		8: {},
	}}
	return NewService(repo, scoper), repo
}

func TestListVisibleFiltersToScope(t *testing.T) {
	svc, _ := newPropertyService()
	resident := authz.Principal{ID: 7, Role: authz.RoleUser}

	list, err := svc.ListVisible(context.Background(), resident)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "North Lot", list[0].Name)
}

func TestListVisibleEmptyScopeYieldsEmptyList(t *testing.T) {
	svc, _ := newPropertyService()
	unassigned := authz.Principal{ID: 8, Role: authz.RoleUser}

	list, err := svc.ListVisible(context.Background(), unassigned)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGetVisibleHidesOutOfScopeProperty(t *testing.T) {
	svc, _ := newPropertyService()
	resident := authz.Principal{ID: 7, Role: authz.RoleUser}

	_, err := svc.GetVisible(context.Background(), resident, 2)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc, repo := newPropertyService()

	_, err := svc.Create(context.Background(), "   ", "123 Main St")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Len(t, repo.byID, 2)
}

func TestDeleteReturnsRemovedRow(t *testing.T) {
	svc, repo := newPropertyService()

	removed, err := svc.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "South Garage", removed.Name)
	_, ok := repo.byID[2]
	assert.False(t, ok)
}
