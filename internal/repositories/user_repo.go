package repositories

import (
	"context"

	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertByAddress creates a user row for address if absent. Existing rows are
// left untouched apart from the conflict no-op, matching implicit user
// creation on first request submission.
func (r *UserRepo) UpsertByAddress(ctx context.Context, address string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (address)
		VALUES ($1)
		ON CONFLICT (address) DO UPDATE SET address = users.address
		RETURNING id, address, username, email, ens, created_at
	`, address).Scan(&u.ID, &u.Address, &u.Username, &u.Email, &u.ENS, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByAddress(ctx context.Context, address string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, username, email, ens, created_at
		FROM users WHERE address = $1
	`, address).Scan(&u.ID, &u.Address, &u.Username, &u.Email, &u.ENS, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
