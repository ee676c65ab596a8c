package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Service contains the business rules for catalog records.
type Service struct {
	repo Repository
}

// NewService creates a new catalog Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListVehicles returns all vehicles in store order.
func (s *Service) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx)
}

// GetVehicle returns a vehicle by ID.
func (s *Service) GetVehicle(ctx context.Context, id ID) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

// ListCosmeticSets returns all cosmetic sets in store order.
func (s *Service) ListCosmeticSets(ctx context.Context) ([]CosmeticSet, error) {
	return s.repo.ListCosmeticSets(ctx)
}

// ListCosmeticSetsForVehicle returns the cosmetic sets referencing vehicleID.
// No match is an empty slice; an unparsable ID is ErrMalformedID.
func (s *Service) ListCosmeticSetsForVehicle(ctx context.Context, vehicleID ID) ([]CosmeticSet, error) {
	return s.repo.ListCosmeticSetsByVehicle(ctx, vehicleID)
}

// GetCosmeticSet returns a cosmetic set by ID.
func (s *Service) GetCosmeticSet(ctx context.Context, id ID) (*CosmeticSet, error) {
	return s.repo.GetCosmeticSet(ctx, id)
}

// ValidateVehicle checks v's fields and that no other vehicle uses its name.
func (s *Service) ValidateVehicle(ctx context.Context, v *Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	existing, err := s.repo.FindVehicleByName(ctx, v.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check vehicle name: %w", err)
	case existing.ID != v.ID:
		return validationFailure("name", "already exists")
	}
	return nil
}

// SaveVehicle creates v when it has no ID and replaces the stored record otherwise.
func (s *Service) SaveVehicle(ctx context.Context, v *Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	var err error
	if v.ID == "" {
		err = s.repo.CreateVehicle(ctx, v)
	} else {
		err = s.repo.UpdateVehicle(ctx, v)
	}
	if errors.Is(err, ErrDuplicateName) {
		return validationFailure("name", "already exists")
	}
	if err != nil {
		return fmt.Errorf("save vehicle: %w", err)
	}
	return nil
}

// DeleteVehicle removes a vehicle. Cosmetic sets referencing it are left in place.
func (s *Service) DeleteVehicle(ctx context.Context, id ID) error {
	return s.repo.DeleteVehicle(ctx, id)
}

// ValidateCosmeticSet checks c's fields and resolves its vehicle reference,
// returning the referenced vehicle.
func (s *Service) ValidateCosmeticSet(ctx context.Context, c *CosmeticSet) (*Vehicle, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	v, err := s.repo.GetVehicle(ctx, c.VehicleID)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedID) {
		return nil, validationFailure("car", "must reference an existing vehicle")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve vehicle: %w", err)
	}
	return v, nil
}

// SaveCosmeticSet creates c when it has no ID and replaces the stored record otherwise.
func (s *Service) SaveCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var err error
	if c.ID == "" {
		err = s.repo.CreateCosmeticSet(ctx, c)
	} else {
		err = s.repo.UpdateCosmeticSet(ctx, c)
	}
	if err != nil {
		return fmt.Errorf("save cosmetic set: %w", err)
	}
	return nil
}

// DeleteCosmeticSet removes a cosmetic set.
func (s *Service) DeleteCosmeticSet(ctx context.Context, id ID) error {
	return s.repo.DeleteCosmeticSet(ctx, id)
}

// IsNotFound returns true when err means the record does not exist or its
// ID cannot exist in the store.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedID)
}
