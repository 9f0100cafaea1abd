package repositories

import (
	"context"
	"fmt"

	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CashRepo struct {
	pool *pgxpool.Pool
}

func NewCashRepo(pool *pgxpool.Pool) *CashRepo {
	return &CashRepo{pool: pool}
}

func (r *CashRepo) Create(ctx context.Context, c *models.CashRequest) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO cash_requests (id, address, direction, token, amount_wei, bank_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, c.ID, c.Address, c.Direction, c.Token, c.AmountWei, c.BankRef, c.Status).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CashRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CashRequest, error) {
	var c models.CashRequest
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, direction, token, amount_wei, bank_ref, status, created_at, updated_at
		FROM cash_requests WHERE id = $1
	`, id).Scan(&c.ID, &c.Address, &c.Direction, &c.Token, &c.AmountWei, &c.BankRef, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type CashFilter struct {
	Address   *string
	Direction *string
	Status    *string
	WithUser  bool
}

func (r *CashRepo) List(ctx context.Context, f CashFilter) ([]models.CashWithUser, error) {
	query := `
		SELECT c.id, c.address, c.direction, c.token, c.amount_wei, c.bank_ref, c.status, c.created_at, c.updated_at`
	if f.WithUser {
		query += `,
		       u.username, u.email, u.ens`
	}
	query += `
		FROM cash_requests c`
	if f.WithUser {
		query += `
		LEFT JOIN users u ON u.address = c.address`
	}

	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Address != nil {
		where = append(where, fmt.Sprintf("c.address = $%d", argIdx))
		args = append(args, *f.Address)
		argIdx++
	}
	if f.Direction != nil {
		where = append(where, fmt.Sprintf("c.direction = $%d", argIdx))
		args = append(args, *f.Direction)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("c.status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}
	query += " ORDER BY c.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.CashWithUser{}
	for rows.Next() {
		var c models.CashWithUser
		if f.WithUser {
			var s models.UserSummary
			if err := rows.Scan(&c.ID, &c.Address, &c.Direction, &c.Token, &c.AmountWei, &c.BankRef, &c.Status,
				&c.CreatedAt, &c.UpdatedAt, &s.Username, &s.Email, &s.ENS); err != nil {
				return nil, err
			}
			c.User = &s
		} else {
			if err := rows.Scan(&c.ID, &c.Address, &c.Direction, &c.Token, &c.AmountWei, &c.BankRef, &c.Status,
				&c.CreatedAt, &c.UpdatedAt); err != nil {
				return nil, err
			}
		}
		requests = append(requests, c)
	}
	return requests, rows.Err()
}

func (r *CashRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.CashRequest, error) {
	var c models.CashRequest
	err := r.pool.QueryRow(ctx, `
		UPDATE cash_requests SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, address, direction, token, amount_wei, bank_ref, status, created_at, updated_at
	`, status, id).Scan(&c.ID, &c.Address, &c.Direction, &c.Token, &c.AmountWei, &c.BankRef, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
