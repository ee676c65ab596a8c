package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	vehicleColumns = `id::text, name, class_name, COALESCE(car_image_url, '')`
	setColumns     = `id::text, set_name, car_id::text, COALESCE(set_effects, ''), parts,
		COALESCE(image_url_front, ''), COALESCE(image_url_side, ''), COALESCE(image_url_rear, '')`
)

// PostgresRepository stores catalog documents in PostgreSQL tables.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository with the given connection pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListVehicles returns every vehicle in insertion order.
func (r *PostgresRepository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	out := make([]Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return out, nil
}

// GetVehicle fetches a vehicle by its UUID.
func (r *PostgresRepository) GetVehicle(ctx context.Context, id ID) (*Vehicle, error) {
	pgID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	v, err := scanVehicle(r.db.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle by id: %w", err)
	}
	return v, nil
}

// FindVehicleByName fetches a vehicle by its unique name.
func (r *PostgresRepository) FindVehicleByName(ctx context.Context, name string) (*Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM vehicles WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle by name: %w", err)
	}
	return v, nil
}

// CreateVehicle inserts a vehicle and assigns its generated ID.
func (r *PostgresRepository) CreateVehicle(ctx context.Context, v *Vehicle) error {
	var id string
	err := r.db.QueryRow(ctx,
		`INSERT INTO vehicles (name, class_name, car_image_url)
		 VALUES ($1, $2, NULLIF($3, ''))
		 RETURNING id::text`,
		v.Name, v.Class, v.ImageURL,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	v.ID = ID(id)
	return nil
}

// UpdateVehicle overwrites every column of an existing vehicle.
func (r *PostgresRepository) UpdateVehicle(ctx context.Context, v *Vehicle) error {
	pgID, err := parseUUID(v.ID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE vehicles
		 SET name = $2, class_name = $3, car_image_url = NULLIF($4, ''), updated_at = NOW()
		 WHERE id = $1`,
		pgID, v.Name, v.Class, v.ImageURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVehicle removes a vehicle. Cosmetic sets referencing it are kept.
func (r *PostgresRepository) DeleteVehicle(ctx context.Context, id ID) error {
	return r.deleteByID(ctx, "vehicles", id)
}

// ListCosmeticSets returns every cosmetic set in insertion order.
func (r *PostgresRepository) ListCosmeticSets(ctx context.Context) ([]CosmeticSet, error) {
	return r.querySets(ctx, `SELECT `+setColumns+` FROM cosmetic_sets ORDER BY created_at`)
}

// ListCosmeticSetsByVehicle returns the cosmetic sets referencing vehicleID.
func (r *PostgresRepository) ListCosmeticSetsByVehicle(ctx context.Context, vehicleID ID) ([]CosmeticSet, error) {
	pgID, err := parseUUID(vehicleID)
	if err != nil {
		return nil, err
	}
	return r.querySets(ctx,
		`SELECT `+setColumns+` FROM cosmetic_sets WHERE car_id = $1 ORDER BY created_at`, pgID)
}

func (r *PostgresRepository) querySets(ctx context.Context, sql string, args ...any) ([]CosmeticSet, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list cosmetic sets: %w", err)
	}
	defer rows.Close()

	out := make([]CosmeticSet, 0)
	for rows.Next() {
		c, err := scanCosmeticSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cosmetic set: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cosmetic sets: %w", err)
	}
	return out, nil
}

// GetCosmeticSet fetches a cosmetic set by its UUID.
func (r *PostgresRepository) GetCosmeticSet(ctx context.Context, id ID) (*CosmeticSet, error) {
	pgID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	c, err := scanCosmeticSet(r.db.QueryRow(ctx,
		`SELECT `+setColumns+` FROM cosmetic_sets WHERE id = $1`, pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cosmetic set by id: %w", err)
	}
	return c, nil
}

// CreateCosmeticSet inserts a cosmetic set and assigns its generated ID.
func (r *PostgresRepository) CreateCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	carID, err := parseUUID(c.VehicleID)
	if err != nil {
		return err
	}
	var id string
	err = r.db.QueryRow(ctx,
		`INSERT INTO cosmetic_sets
		   (set_name, car_id, set_effects, parts, image_url_front, image_url_side, image_url_rear)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		 RETURNING id::text`,
		c.SetName, carID, c.SetEffects, partsOrEmpty(c.Parts),
		c.ImageURLFront, c.ImageURLSide, c.ImageURLRear,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("create cosmetic set: %w", err)
	}
	c.ID = ID(id)
	return nil
}

// UpdateCosmeticSet overwrites every column of an existing cosmetic set.
func (r *PostgresRepository) UpdateCosmeticSet(ctx context.Context, c *CosmeticSet) error {
	pgID, err := parseUUID(c.ID)
	if err != nil {
		return err
	}
	carID, err := parseUUID(c.VehicleID)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE cosmetic_sets
		 SET set_name = $2, car_id = $3, set_effects = NULLIF($4, ''), parts = $5,
		     image_url_front = NULLIF($6, ''), image_url_side = NULLIF($7, ''),
		     image_url_rear = NULLIF($8, ''), updated_at = NOW()
		 WHERE id = $1`,
		pgID, c.SetName, carID, c.SetEffects, partsOrEmpty(c.Parts),
		c.ImageURLFront, c.ImageURLSide, c.ImageURLRear,
	)
	if err != nil {
		return fmt.Errorf("update cosmetic set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCosmeticSet removes a cosmetic set.
func (r *PostgresRepository) DeleteCosmeticSet(ctx context.Context, id ID) error {
	return r.deleteByID(ctx, "cosmetic_sets", id)
}

func (r *PostgresRepository) deleteByID(ctx context.Context, table string, id ID) error {
	pgID, err := parseUUID(id)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, pgID)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (*Vehicle, error) {
	v := &Vehicle{}
	var id string
	if err := row.Scan(&id, &v.Name, &v.Class, &v.ImageURL); err != nil {
		return nil, err
	}
	v.ID = ID(id)
	return v, nil
}

func scanCosmeticSet(row pgx.Row) (*CosmeticSet, error) {
	c := &CosmeticSet{}
	var id, carID string
	err := row.Scan(&id, &c.SetName, &carID, &c.SetEffects, &c.Parts,
		&c.ImageURLFront, &c.ImageURLSide, &c.ImageURLRear)
	if err != nil {
		return nil, err
	}
	c.ID, c.VehicleID = ID(id), ID(carID)
	if c.Parts == nil {
		c.Parts = []string{}
	}
	return c, nil
}

// parseUUID validates id and returns it in canonical form.
func parseUUID(id ID) (string, error) {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return "", ErrMalformedID
	}
	return u.String(), nil
}

func partsOrEmpty(parts []string) []string {
	if parts == nil {
		return []string{}
	}
	return parts
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PostgresRepository)(nil)
