package admin

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carcosmetics/service/internal/catalog"
	"github.com/carcosmetics/service/internal/storage"
	"github.com/carcosmetics/service/internal/upload"
)

// fakeStorage records keys and fails every call when err is set.
type fakeStorage struct {
	keys []string
	err  error
}

func (f *fakeStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return "", &storage.PutError{Key: key, Err: f.err}
	}
	return "https://bucket.example.com/" + key, nil
}

type flowFixture struct {
	svc   *catalog.Service
	store *fakeStorage
	flow  *Flow
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()
	svc := catalog.NewService(catalog.NewMemoryRepository())
	store := &fakeStorage{}
	uploader := upload.NewService(store, logr.Discard(), nil)
	return &flowFixture{svc: svc, store: store, flow: NewFlow(svc, uploader, logr.Discard())}
}

func file(name string) *upload.File {
	return &upload.File{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

func TestSaveVehicle_UploadsImage(t *testing.T) {
	fx := newFlowFixture(t)

	v, err := fx.flow.SaveVehicle(context.Background(), VehicleSubmission{
		Name: "Avante N", Class: catalog.ClassCompact, Image: file("avante n.png"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "https://bucket.example.com/avante_n.png", v.ImageURL)
	assert.Equal(t, []string{"avante_n.png"}, fx.store.keys)

	stored, err := fx.svc.GetVehicle(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ImageURL, stored.ImageURL)
}

func TestSaveVehicle_StorageDownKeepsPreviousURL(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	v, err := fx.flow.SaveVehicle(ctx, VehicleSubmission{Name: "K5", Class: catalog.ClassMidSize, Image: file("k5.png")})
	require.NoError(t, err)
	before := v.ImageURL
	require.NotEmpty(t, before)

	fx.store.err = errors.New("bucket unreachable")

	updated, err := fx.flow.SaveVehicle(ctx, VehicleSubmission{
		ID: v.ID, Name: "K5", Class: catalog.ClassSports, Image: file("k5-new.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, before, updated.ImageURL)

	stored, err := fx.svc.GetVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.ClassSports, stored.Class)
	assert.Equal(t, before, stored.ImageURL)
}

func TestSaveVehicle_StorageDownOnCreateLeavesURLEmpty(t *testing.T) {
	fx := newFlowFixture(t)
	fx.store.err = errors.New("access denied")

	v, err := fx.flow.SaveVehicle(context.Background(), VehicleSubmission{
		Name: "Casper", Class: catalog.ClassSmall, Image: file("casper.png"),
	})
	require.NoError(t, err)
	assert.Empty(t, v.ImageURL)

	list, _ := fx.svc.ListVehicles(context.Background())
	assert.Len(t, list, 1)
}

func TestSaveVehicle_InvalidDoesNotUploadOrPersist(t *testing.T) {
	fx := newFlowFixture(t)

	_, err := fx.flow.SaveVehicle(context.Background(), VehicleSubmission{
		Name: "Tucson", Class: "crossover", Image: file("tucson.png"),
	})
	require.Error(t, err)
	assert.True(t, catalog.IsValidation(err))
	assert.Empty(t, fx.store.keys)

	list, _ := fx.svc.ListVehicles(context.Background())
	assert.Empty(t, list)
}

func TestSaveVehicle_NoFileKeepsURL(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()

	v, err := fx.flow.SaveVehicle(ctx, VehicleSubmission{Name: "Ray", Class: catalog.ClassSmall, Image: file("ray.png")})
	require.NoError(t, err)

	updated, err := fx.flow.SaveVehicle(ctx, VehicleSubmission{ID: v.ID, Name: "Ray EV", Class: catalog.ClassSmall})
	require.NoError(t, err)
	assert.Equal(t, v.ImageURL, updated.ImageURL)
	assert.Equal(t, "Ray EV", updated.Name)
}

func TestSaveVehicle_UnknownID(t *testing.T) {
	fx := newFlowFixture(t)

	_, err := fx.flow.SaveVehicle(context.Background(), VehicleSubmission{
		ID: "0000000000000000000000ff", Name: "Ghost", Class: catalog.ClassSUV,
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func saveVehicle(t *testing.T, fx *flowFixture, name string) *catalog.Vehicle {
	t.Helper()
	v := &catalog.Vehicle{Name: name, Class: catalog.ClassSupercar}
	require.NoError(t, fx.svc.SaveVehicle(context.Background(), v))
	return v
}

func TestSaveCosmeticSet_FrontOnlyLeavesOtherSlots(t *testing.T) {
	fx := newFlowFixture(t)
	ctx := context.Background()
	v := saveVehicle(t, fx, "Vision N")

	c, err := fx.flow.SaveCosmeticSet(ctx, CosmeticSetSubmission{
		SetName:   "Neon",
		VehicleID: v.ID,
		Images: map[Slot]*upload.File{
			SlotFront: file("f.png"),
			SlotSide:  file("s.png"),
			SlotRear:  file("r.png"),
		},
	})
	require.NoError(t, err)
	side, rear := c.ImageURLSide, c.ImageURLRear
	require.NotEmpty(t, side)
	require.NotEmpty(t, rear)

	updated, err := fx.flow.SaveCosmeticSet(ctx, CosmeticSetSubmission{
		ID:        c.ID,
		SetName:   "Neon",
		VehicleID: v.ID,
		Images:    map[Slot]*upload.File{SlotFront: file("f2.png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example.com/Vision N_Neon_image_url_front_f2.png", updated.ImageURLFront)
	assert.Equal(t, side, updated.ImageURLSide)
	assert.Equal(t, rear, updated.ImageURLRear)

	stored, err := fx.svc.GetCosmeticSet(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *stored)
}

func TestSaveCosmeticSet_KeysPerSlot(t *testing.T) {
	fx := newFlowFixture(t)
	v := saveVehicle(t, fx, "K5")

	_, err := fx.flow.SaveCosmeticSet(context.Background(), CosmeticSetSubmission{
		SetName:   "Black_Edition",
		VehicleID: v.ID,
		Parts:     []string{"spoiler", "wheels"},
		Images: map[Slot]*upload.File{
			SlotRear:  file("rear view.png"),
			SlotFront: file("front.png"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"K5_Black%5FEdition_image_url_front_front.png",
		"K5_Black%5FEdition_image_url_rear_rear_view.png",
	}, fx.store.keys)
}

func TestSaveCosmeticSet_UnknownVehicleIsValidationFailure(t *testing.T) {
	fx := newFlowFixture(t)

	_, err := fx.flow.SaveCosmeticSet(context.Background(), CosmeticSetSubmission{
		SetName:   "Orphan",
		VehicleID: "0000000000000000000000ff",
		Images:    map[Slot]*upload.File{SlotFront: file("f.png")},
	})
	require.Error(t, err)
	assert.True(t, catalog.IsValidation(err))
	assert.Empty(t, fx.store.keys)

	sets, _ := fx.svc.ListCosmeticSets(context.Background())
	assert.Empty(t, sets)
}

func TestSaveCosmeticSet_StorageDownStillPersists(t *testing.T) {
	fx := newFlowFixture(t)
	v := saveVehicle(t, fx, "GV80")
	fx.store.err = errors.New("timeout")

	c, err := fx.flow.SaveCosmeticSet(context.Background(), CosmeticSetSubmission{
		SetName:   "Matte",
		VehicleID: v.ID,
		Images:    map[Slot]*upload.File{SlotSide: file("s.png")},
	})
	require.NoError(t, err)
	assert.Empty(t, c.ImageURLSide)
	assert.NotEmpty(t, c.ID)
}

func TestSlotURL(t *testing.T) {
	c := &catalog.CosmeticSet{}
	for _, s := range Slots() {
		s.setURL(c, "u-"+string(s))
	}
	assert.Equal(t, "u-image_url_front", SlotFront.URL(c))
	assert.Equal(t, "u-image_url_side", SlotSide.URL(c))
	assert.Equal(t, "u-image_url_rear", SlotRear.URL(c))
}
