package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-logr/logr"

	"github.com/carcosmetics/service/internal/response"
)

// Liveness is the body returned by the index route.
const Liveness = "Car Cosmetics API is running! Go to /admin to manage data."

// Handler holds the public, read-only HTTP handlers.
type Handler struct {
	svc *Service
	log logr.Logger
}

// NewHandler creates a new catalog Handler.
func NewHandler(svc *Service, log logr.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the public API routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/api/cars", h.ListCars)
	r.Get("/api/cosmetic_sets/{vehicleId}", h.ListCosmeticSets)
}

// Index godoc
//
//	@Summary	Liveness
//	@Tags		meta
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/ [get]
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	response.Text(w, Liveness)
}

// ListCars godoc
//
//	@Summary		List vehicles
//	@Description	Returns every vehicle in store order.
//	@Tags			cars
//	@Produce		json
//	@Success		200	{array}		Vehicle
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/cars [get]
func (h *Handler) ListCars(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.svc.ListVehicles(r.Context())
	if err != nil {
		h.log.Error(err, "list vehicles")
		response.InternalError(w)
		return
	}
	response.List(w, vehicles)
}

// ListCosmeticSets godoc
//
//	@Summary		List cosmetic sets of a vehicle
//	@Description	Returns the cosmetic sets whose car reference equals vehicleId. No match is an empty array.
//	@Tags			cosmetic_sets
//	@Produce		json
//	@Param			vehicleId	path		string	true	"Vehicle ID"
//	@Success		200			{array}		CosmeticSet
//	@Failure		400			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/api/cosmetic_sets/{vehicleId} [get]
func (h *Handler) ListCosmeticSets(w http.ResponseWriter, r *http.Request) {
	vehicleID := ID(chi.URLParam(r, "vehicleId"))

	sets, err := h.svc.ListCosmeticSetsForVehicle(r.Context(), vehicleID)
	if errors.Is(err, ErrMalformedID) {
		response.BadRequest(w, "invalid vehicle id")
		return
	}
	if err != nil {
		h.log.Error(err, "list cosmetic sets", "vehicleId", vehicleID)
		response.InternalError(w)
		return
	}
	response.List(w, sets)
}
