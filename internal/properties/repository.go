package properties

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const propertyColumns = `id, name, address, created_at, updated_at`

// ListPropertyIDs implements authz.PropertyIDSource. Called fresh on every
// scope computation so new properties are immediately visible.
func (r *Repository) ListPropertyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM properties ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByIDs returns the properties matching the given identifiers, ordered by
// name. An empty id set yields an empty slice without touching the store.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]Property, error) {
	if len(ids) == 0 {
		return []Property{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, property)
	}
	return list, rows.Err()
}

// Exists reports whether a property row with the given id is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return false, err
	}
	return found, nil
}

// FindByID fetches one property.
func (r *Repository) FindByID(ctx context.Context, id int64) (Property, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	property, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, shared.ErrNotFound
		}
		return Property{}, err
	}
	return property, nil
}

// Create inserts a new property. Names are unique.
func (r *Repository) Create(ctx context.Context, name, address string) (Property, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO properties (name, address, created_at, updated_at) VALUES ($1, $2, NOW(), NOW()) RETURNING `+propertyColumns,
		name, address)
	property, err := scanProperty(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Property{}, shared.ErrDuplicate
		}
		return Property{}, err
	}
	return property, nil
}

// Update persists name and address changes.
func (r *Repository) Update(ctx context.Context, id int64, name, address string) (Property, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE properties SET name = $2, address = $3, updated_at = NOW() WHERE id = $1 RETURNING `+propertyColumns,
		id, name, address)
	property, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, shared.ErrNotFound
		}
		if isUniqueViolation(err) {
			return Property{}, shared.ErrDuplicate
		}
		return Property{}, err
	}
	return property, nil
}

// Delete removes a property. Returns ErrNotFound if nothing was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProperty(row pgx.Row) (Property, error) {
	var property Property
	err := row.Scan(&property.ID, &property.Name, &property.Address, &property.CreatedAt, &property.UpdatedAt)
	return property, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
