package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The dynamic verification payload is a map in the domain model and an opaque
// JSON text blob at rest. (De)serialization happens only here, at the storage
// boundary.

type VerificationRepo struct {
	pool *pgxpool.Pool
}

func NewVerificationRepo(pool *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{pool: pool}
}

func (r *VerificationRepo) Create(ctx context.Context, v *models.VerificationRequest) error {
	blob, err := json.Marshal(v.Fields)
	if err != nil {
		return fmt.Errorf("serialize fields: %w", err)
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO verification_requests (id, address, kind, fields, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, v.ID, v.Address, v.Kind, string(blob), v.Status).Scan(&v.CreatedAt, &v.UpdatedAt)
}

func (r *VerificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	var v models.VerificationRequest
	var blob string
	err := r.pool.QueryRow(ctx, `
		SELECT id, address, kind, fields, status, created_at, updated_at
		FROM verification_requests WHERE id = $1
	`, id).Scan(&v.ID, &v.Address, &v.Kind, &blob, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &v.Fields); err != nil {
		return nil, fmt.Errorf("deserialize fields: %w", err)
	}
	return &v, nil
}

type VerificationFilter struct {
	Address  *string
	Status   *string
	WithUser bool // annotate rows with owning-user summary fields
}

func (r *VerificationRepo) List(ctx context.Context, f VerificationFilter) ([]models.VerificationWithUser, error) {
	query := `
		SELECT v.id, v.address, v.kind, v.fields, v.status, v.created_at, v.updated_at`
	if f.WithUser {
		query += `,
		       u.username, u.email, u.ens`
	}
	query += `
		FROM verification_requests v`
	if f.WithUser {
		query += `
		LEFT JOIN users u ON u.address = v.address`
	}

	args := []any{}
	argIdx := 1
	where := []string{}

	if f.Address != nil {
		where = append(where, fmt.Sprintf("v.address = $%d", argIdx))
		args = append(args, *f.Address)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("v.status = $%d", argIdx))
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
	query += " ORDER BY v.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.VerificationWithUser{}
	for rows.Next() {
		var v models.VerificationWithUser
		var blob string
		if f.WithUser {
			var s models.UserSummary
			if err := rows.Scan(&v.ID, &v.Address, &v.Kind, &blob, &v.Status, &v.CreatedAt, &v.UpdatedAt,
				&s.Username, &s.Email, &s.ENS); err != nil {
				return nil, err
			}
			v.User = &s
		} else {
			if err := rows.Scan(&v.ID, &v.Address, &v.Kind, &blob, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
				return nil, err
			}
		}
		if err := json.Unmarshal([]byte(blob), &v.Fields); err != nil {
			return nil, fmt.Errorf("deserialize fields: %w", err)
		}
		requests = append(requests, v)
	}
	return requests, rows.Err()
}

// UpdateStatus overwrites status and bumps updated_at. Returns pgx.ErrNoRows
// through QueryRow when id does not exist.
func (r *VerificationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.VerificationRequest, error) {
	var v models.VerificationRequest
	var blob string
	err := r.pool.QueryRow(ctx, `
		UPDATE verification_requests SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, address, kind, fields, status, created_at, updated_at
	`, status, id).Scan(&v.ID, &v.Address, &v.Kind, &blob, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &v.Fields); err != nil {
		return nil, fmt.Errorf("deserialize fields: %w", err)
	}
	return &v, nil
}
