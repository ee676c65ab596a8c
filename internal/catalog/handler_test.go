package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *Service) {
	t.Helper()
	svc := NewService(NewMemoryRepository())
	r := chi.NewRouter()
	NewHandler(svc, logr.Discard()).Routes(r)
	return r, svc
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, Liveness, rec.Body.String())
}

func TestListCars_EmptyStore(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := get(t, h, "/api/cars")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListCars_ReturnsVehicles(t *testing.T) {
	h, svc := newTestRouter(t)
	v := &Vehicle{Name: "Ioniq 5 N", Class: ClassSports, ImageURL: "https://cdn.example.com/ioniq.png"}
	require.NoError(t, svc.SaveVehicle(context.Background(), v))

	rec := get(t, h, "/api/cars")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []Vehicle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, *v, got[0])
}

func TestListCosmeticSets(t *testing.T) {
	h, svc := newTestRouter(t)
	ctx := context.Background()

	v := &Vehicle{Name: "Staria", Class: ClassFullSize}
	require.NoError(t, svc.SaveVehicle(ctx, v))
	set := &CosmeticSet{SetName: "Lounge", VehicleID: v.ID, Parts: []string{"wheels", "grille"}}
	require.NoError(t, svc.SaveCosmeticSet(ctx, set))

	t.Run("match", func(t *testing.T) {
		rec := get(t, h, "/api/cosmetic_sets/"+string(v.ID))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Lounge", got[0]["set_name"])
		assert.Equal(t, map[string]any{"$oid": string(v.ID)}, got[0]["car"])
		assert.Equal(t, []any{"wheels", "grille"}, got[0]["parts"])
	})

	t.Run("no match", func(t *testing.T) {
		rec := get(t, h, "/api/cosmetic_sets/0000000000000000000000ff")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := get(t, h, "/api/cosmetic_sets/not-an-object-id")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"error":"invalid vehicle id"}`, rec.Body.String())
	})
}
