package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `id, property_id, license_plate, make, model, color, owner_name, unit_number, status, notes, created_at, updated_at`

// buildFilter renders the WHERE clause shared by List and Count. propertyIDs
// is the already scope-intersected permitted set and is always present; the
// caller never reaches this method with an empty set.
func buildFilter(propertyIDs []int64, f ListFilters) (string, []any) {
	clauses := []string{"property_id = ANY($1)"}
	args := []any{propertyIDs}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(license_plate ILIKE $%d OR owner_name ILIKE $%d)", n, n))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// List returns one page of vehicles within the given permitted properties,
// newest first.
func (r *Repository) List(ctx context.Context, propertyIDs []int64, f ListFilters, limit, offset int) ([]Vehicle, error) {
	where, args := buildFilter(propertyIDs, f)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM vehicles %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		vehicleColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []Vehicle{}
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, vehicle)
	}
	return list, rows.Err()
}

// Count returns the total row count for the same filter List applies.
func (r *Repository) Count(ctx context.Context, propertyIDs []int64, f ListFilters) (int, error) {
	where, args := buildFilter(propertyIDs, f)
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vehicles `+where, args...).Scan(&total)
	return total, err
}

// FindByID fetches one vehicle.
func (r *Repository) FindByID(ctx context.Context, id int64) (Vehicle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	vehicle, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, shared.ErrNotFound
		}
		return Vehicle{}, err
	}
	return vehicle, nil
}

// Create inserts a vehicle row.
func (r *Repository) Create(ctx context.Context, vehicle Vehicle) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO vehicles (property_id, license_plate, make, model, color, owner_name, unit_number, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 RETURNING `+vehicleColumns,
		vehicle.PropertyID, vehicle.LicensePlate, vehicle.Make, vehicle.Model, vehicle.Color,
		vehicle.OwnerName, vehicle.UnitNumber, vehicle.Status, vehicle.Notes)
	return scanVehicle(row)
}

// Update persists field changes on an existing row.
func (r *Repository) Update(ctx context.Context, vehicle Vehicle) (Vehicle, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE vehicles
		 SET property_id = $2, license_plate = $3, make = $4, model = $5, color = $6,
		     owner_name = $7, unit_number = $8, status = $9, notes = $10, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+vehicleColumns,
		vehicle.ID, vehicle.PropertyID, vehicle.LicensePlate, vehicle.Make, vehicle.Model,
		vehicle.Color, vehicle.OwnerName, vehicle.UnitNumber, vehicle.Status, vehicle.Notes)
	updated, err := scanVehicle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, shared.ErrNotFound
		}
		return Vehicle{}, err
	}
	return updated, nil
}

// Delete removes a vehicle row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.PropertyID, &v.LicensePlate, &v.Make, &v.Model, &v.Color,
		&v.OwnerName, &v.UnitNumber, &v.Status, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
