package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) UserByEmail(ctx context.Context, tenantID, email string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.tenant_id, u.role_id, r.name, u.email, u.password_hash, u.is_active, u.created_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.tenant_id = $1 AND u.email = $2`,
		tenantID, email,
	).Scan(&u.ID, &u.TenantID, &u.RoleID, &u.RoleName, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user by email: %w", err)
	}
	return u, nil
}

// UserByEmailAnyTenant supports login without a tenant hint. Emails are
// unique per tenant only, so the first active match wins.
func (s *Store) UserByEmailAnyTenant(ctx context.Context, email string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.tenant_id, u.role_id, r.name, u.email, u.password_hash, u.is_active, u.created_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.email = $1 AND u.is_active
		ORDER BY u.created_at
		LIMIT 1`,
		email,
	).Scan(&u.ID, &u.TenantID, &u.RoleID, &u.RoleName, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user by email: %w", err)
	}
	return u, nil
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var allowed bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM role_permissions rp
			JOIN permissions p ON p.id = rp.permission_id
			WHERE rp.role_id = $1 AND p.name = $2
		)`,
		roleID, permission,
	).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("query role permission: %w", err)
	}
	return allowed, nil
}

// ApproverUserIDs returns users in the tenant whose role carries the given
// permission, capped to keep notification fan-out bounded.
func (s *Store) ApproverUserIDs(ctx context.Context, tenantID, permission string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id
		FROM users u
		JOIN role_permissions rp ON rp.role_id = u.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE u.tenant_id = $1 AND p.name = $2 AND u.is_active
		LIMIT 25`,
		tenantID, permission,
	)
	if err != nil {
		return nil, fmt.Errorf("query approvers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan approver: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
