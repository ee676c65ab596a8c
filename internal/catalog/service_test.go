package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	return NewService(repo), repo
}

func TestSaveVehicle_InvalidClassIsNotPersisted(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	err := svc.SaveVehicle(ctx, &Vehicle{Name: "Sonata", Class: "sedan"})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	list, err := repo.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveVehicle_DuplicateNameFailsOnSecond(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SaveVehicle(ctx, &Vehicle{Name: "Sonata", Class: ClassMidSize}))

	err := svc.SaveVehicle(ctx, &Vehicle{Name: "Sonata", Class: ClassSports})
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "already exists", ve.Fields()["name"])

	list, _ := repo.ListVehicles(ctx)
	assert.Len(t, list, 1)
}

func TestValidateVehicle_NameUniqueness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := &Vehicle{Name: "Sonata", Class: ClassMidSize}
	require.NoError(t, svc.SaveVehicle(ctx, first))

	// Re-validating the same record is fine.
	assert.NoError(t, svc.ValidateVehicle(ctx, first))

	other := &Vehicle{Name: "Sonata", Class: ClassSUV}
	assert.True(t, IsValidation(svc.ValidateVehicle(ctx, other)))
}

func TestSaveVehicle_UpdateKeepsID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v := &Vehicle{Name: "Morning", Class: ClassSmall}
	require.NoError(t, svc.SaveVehicle(ctx, v))
	id := v.ID

	v.Class = ClassCompact
	require.NoError(t, svc.SaveVehicle(ctx, v))

	got, err := svc.GetVehicle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ClassCompact, got.Class)
}

func TestValidateCosmeticSet_ResolvesVehicle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v := &Vehicle{Name: "Genesis", Class: ClassFullSize}
	require.NoError(t, svc.SaveVehicle(ctx, v))

	got, err := svc.ValidateCosmeticSet(ctx, &CosmeticSet{SetName: "Black", VehicleID: v.ID})
	require.NoError(t, err)
	assert.Equal(t, "Genesis", got.Name)

	_, err = svc.ValidateCosmeticSet(ctx, &CosmeticSet{SetName: "Black", VehicleID: "0000000000000000000000ff"})
	assert.True(t, IsValidation(err))

	_, err = svc.ValidateCosmeticSet(ctx, &CosmeticSet{SetName: "Black", VehicleID: "not-an-id"})
	assert.True(t, IsValidation(err))
}

func TestListCosmeticSetsForVehicle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a := &Vehicle{Name: "A", Class: ClassSUV}
	b := &Vehicle{Name: "B", Class: ClassSUV}
	require.NoError(t, svc.SaveVehicle(ctx, a))
	require.NoError(t, svc.SaveVehicle(ctx, b))
	require.NoError(t, svc.SaveCosmeticSet(ctx, &CosmeticSet{SetName: "a1", VehicleID: a.ID}))
	require.NoError(t, svc.SaveCosmeticSet(ctx, &CosmeticSet{SetName: "a2", VehicleID: a.ID}))
	require.NoError(t, svc.SaveCosmeticSet(ctx, &CosmeticSet{SetName: "b1", VehicleID: b.ID}))

	sets, err := svc.ListCosmeticSetsForVehicle(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "a1", sets[0].SetName)
	assert.Equal(t, "a2", sets[1].SetName)

	sets, err = svc.ListCosmeticSetsForVehicle(ctx, "0000000000000000000000ff")
	require.NoError(t, err)
	assert.NotNil(t, sets)
	assert.Empty(t, sets)

	_, err = svc.ListCosmeticSetsForVehicle(ctx, "zzz")
	assert.True(t, errors.Is(err, ErrMalformedID))
}

func TestDeleteVehicle_LeavesCosmeticSetsDangling(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	v := &Vehicle{Name: "Pony", Class: ClassLegend}
	require.NoError(t, svc.SaveVehicle(ctx, v))
	require.NoError(t, svc.SaveCosmeticSet(ctx, &CosmeticSet{SetName: "Retro", VehicleID: v.ID}))

	require.NoError(t, svc.DeleteVehicle(ctx, v.ID))

	sets, err := svc.ListCosmeticSetsForVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, sets, 1)

	err = svc.DeleteVehicle(ctx, v.ID)
	assert.True(t, svc.IsNotFound(err))
}
