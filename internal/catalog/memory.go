package catalog

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sync"
)

var memoryIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// MemoryRepository is an in-process Repository for development and tests.
// Records are returned in insertion order.
type MemoryRepository struct {
	mu       sync.RWMutex
	seq      uint64
	vehicles map[ID]Vehicle
	sets     map[ID]CosmeticSet
	vOrder   []ID
	sOrder   []ID
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		vehicles: make(map[ID]Vehicle),
		sets:     make(map[ID]CosmeticSet),
	}
}

func (r *MemoryRepository) nextID() ID {
	r.seq++
	return ID(fmt.Sprintf("%024x", r.seq))
}

func checkMemoryID(id ID) error {
	if !memoryIDPattern.MatchString(string(id)) {
		return ErrMalformedID
	}
	return nil
}

// ListVehicles returns every vehicle in insertion order.
func (r *MemoryRepository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Vehicle, 0, len(r.vOrder))
	for _, id := range r.vOrder {
		out = append(out, r.vehicles[id])
	}
	return out, nil
}

// GetVehicle fetches a vehicle by its hex ID.
func (r *MemoryRepository) GetVehicle(ctx context.Context, id ID) (*Vehicle, error) {
	if err := checkMemoryID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

// FindVehicleByName fetches a vehicle by its unique name.
func (r *MemoryRepository) FindVehicleByName(ctx context.Context, name string) (*Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.vOrder {
		if v := r.vehicles[id]; v.Name == name {
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

// CreateVehicle stores a vehicle and assigns the next ID.
func (r *MemoryRepository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(v.Name, "") {
		return ErrDuplicateName
	}
	v.ID = r.nextID()
	r.vehicles[v.ID] = *v
	r.vOrder = append(r.vOrder, v.ID)
	return nil
}

// UpdateVehicle replaces an existing vehicle.
func (r *MemoryRepository) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	if err := checkMemoryID(v.ID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[v.ID]; !ok {
		return ErrNotFound
	}
	if r.nameTaken(v.Name, v.ID) {
		return ErrDuplicateName
	}
	r.vehicles[v.ID] = *v
	return nil
}

// DeleteVehicle removes a vehicle. Cosmetic sets referencing it are kept.
func (r *MemoryRepository) DeleteVehicle(ctx context.Context, id ID) error {
	if err := checkMemoryID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vehicles[id]; !ok {
		return ErrNotFound
	}
	delete(r.vehicles, id)
	r.vOrder = slices.DeleteFunc(r.vOrder, func(x ID) bool { return x == id })
	return nil
}

// nameTaken must be called with mu held.
func (r *MemoryRepository) nameTaken(name string, except ID) bool {
	for id, v := range r.vehicles {
		if id != except && v.Name == name {
			return true
		}
	}
	return false
}

// ListCosmeticSets returns every cosmetic set in insertion order.
func (r *MemoryRepository) ListCosmeticSets(ctx context.Context) ([]CosmeticSet, error) {
	return r.filterSets(func(CosmeticSet) bool { return true }), nil
}

// ListCosmeticSetsByVehicle returns the cosmetic sets referencing vehicleID.
func (r *MemoryRepository) ListCosmeticSetsByVehicle(ctx context.Context, vehicleID ID) ([]CosmeticSet, error) {
	if err := checkMemoryID(vehicleID); err != nil {
		return nil, err
	}
	return r.filterSets(func(c CosmeticSet) bool { return c.VehicleID == vehicleID }), nil
}

func (r *MemoryRepository) filterSets(keep func(CosmeticSet) bool) []CosmeticSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CosmeticSet, 0)
	for _, id := range r.sOrder {
		if c := r.sets[id]; keep(c) {
			c.Parts = slices.Clone(c.Parts)
			out = append(out, c)
		}
	}
	return out
}

// GetCosmeticSet fetches a cosmetic set by its hex ID.
func (r *MemoryRepository) GetCosmeticSet(ctx context.Context, id ID) (*CosmeticSet, error) {
	if err := checkMemoryID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sets[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Parts = slices.Clone(c.Parts)
	return &c, nil
}

// CreateCosmeticSet stores a cosmetic set and assigns the next ID.
func (r *MemoryRepository) CreateCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	if err := checkMemoryID(c.VehicleID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID()
	stored := *c
	stored.Parts = slices.Clone(c.Parts)
	r.sets[c.ID] = stored
	r.sOrder = append(r.sOrder, c.ID)
	return nil
}

// UpdateCosmeticSet replaces an existing cosmetic set.
func (r *MemoryRepository) UpdateCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	if err := checkMemoryID(c.ID); err != nil {
		return err
	}
	if err := checkMemoryID(c.VehicleID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[c.ID]; !ok {
		return ErrNotFound
	}
	stored := *c
	stored.Parts = slices.Clone(c.Parts)
	r.sets[c.ID] = stored
	return nil
}

// DeleteCosmeticSet removes a cosmetic set.
func (r *MemoryRepository) DeleteCosmeticSet(ctx context.Context, id ID) error {
	if err := checkMemoryID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[id]; !ok {
		return ErrNotFound
	}
	delete(r.sets, id)
	r.sOrder = slices.DeleteFunc(r.sOrder, func(x ID) bool { return x == id })
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
