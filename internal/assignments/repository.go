package assignments

import (
	"context"

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

// PropertyIDsForUser implements authz.AssignmentSource. Read fresh on every
// scope computation so assignment edits bind on the very next check.
func (r *Repository) PropertyIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT property_id FROM property_assignments WHERE user_id = $1 ORDER BY property_id`, userID)
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

// ListForUser returns the assignment rows for one user.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, property_id, created_at FROM property_assignments WHERE user_id = $1 ORDER BY property_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.UserID, &a.PropertyID, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Create inserts the pair if absent. Duplicate requests are idempotent
// no-ops; the boolean reports whether a row was actually added.
func (r *Repository) Create(ctx context.Context, userID, propertyID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO property_assignments (user_id, property_id, created_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, property_id) DO NOTHING`,
		userID, propertyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the pair. Returns ErrNotFound when no row existed.
func (r *Repository) Delete(ctx context.Context, userID, propertyID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM property_assignments WHERE user_id = $1 AND property_id = $2`, userID, propertyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
