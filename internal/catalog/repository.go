package catalog

import "context"

// Repository is the document store holding vehicles and cosmetic sets.
// Implementations return ErrMalformedID for identifiers they cannot parse,
// ErrNotFound for missing records and ErrDuplicateName when a vehicle name
// is already taken. List operations return an empty, non-nil slice when
// nothing matches.
type Repository interface {
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	GetVehicle(ctx context.Context, id ID) (*Vehicle, error)
	FindVehicleByName(ctx context.Context, name string) (*Vehicle, error)
	// CreateVehicle inserts v and assigns its ID.
	CreateVehicle(ctx context.Context, v *Vehicle) error
	UpdateVehicle(ctx context.Context, v *Vehicle) error
	DeleteVehicle(ctx context.Context, id ID) error

	ListCosmeticSets(ctx context.Context) ([]CosmeticSet, error)
	ListCosmeticSetsByVehicle(ctx context.Context, vehicleID ID) ([]CosmeticSet, error)
	GetCosmeticSet(ctx context.Context, id ID) (*CosmeticSet, error)
	// CreateCosmeticSet inserts c and assigns its ID.
	CreateCosmeticSet(ctx context.Context, c *CosmeticSet) error
	UpdateCosmeticSet(ctx context.Context, c *CosmeticSet) error
	DeleteCosmeticSet(ctx context.Context, id ID) error
}
