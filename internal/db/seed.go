package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/auth"
	domainauth "hrms/internal/domain/auth"
)

type SeedParams struct {
	TenantName    string
	AdminEmail    string
	AdminPassword string
}

// Seed provisions the default tenant, the built-in roles with their
// permission grants, and the initial admin user. It is idempotent:
// rerunning against a seeded database changes nothing.
func Seed(ctx context.Context, pool *pgxpool.Pool, params SeedParams) error {
	if params.AdminEmail == "" || params.AdminPassword == "" {
		slog.Info("seed skipped, admin credentials not configured")
		return nil
	}

	var tenantID string
	err := pool.QueryRow(ctx, `SELECT id FROM tenants WHERE name = $1`, params.TenantName).Scan(&tenantID)
	if err != nil {
		if err := pool.QueryRow(ctx,
			`INSERT INTO tenants (name) VALUES ($1) RETURNING id`, params.TenantName,
		).Scan(&tenantID); err != nil {
			return fmt.Errorf("seed tenant: %w", err)
		}
	}

	for _, perm := range domainauth.AllPermissions {
		if _, err := pool.Exec(ctx,
			`INSERT INTO permissions (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, perm,
		); err != nil {
			return fmt.Errorf("seed permission %s: %w", perm, err)
		}
	}

	var adminRoleID string
	for role, perms := range domainauth.RolePermissions {
		var roleID string
		err := pool.QueryRow(ctx,
			`SELECT id FROM roles WHERE tenant_id = $1 AND name = $2`, tenantID, role,
		).Scan(&roleID)
		if err != nil {
			if err := pool.QueryRow(ctx,
				`INSERT INTO roles (tenant_id, name) VALUES ($1, $2) RETURNING id`, tenantID, role,
			).Scan(&roleID); err != nil {
				return fmt.Errorf("seed role %s: %w", role, err)
			}
		}
		if role == domainauth.RoleAdmin {
			adminRoleID = roleID
		}
		for _, perm := range perms {
			if _, err := pool.Exec(ctx, `
				INSERT INTO role_permissions (role_id, permission_id)
				SELECT $1, id FROM permissions WHERE name = $2
				ON CONFLICT DO NOTHING`, roleID, perm,
			); err != nil {
				return fmt.Errorf("seed role permission %s/%s: %w", role, perm, err)
			}
		}
	}

	var exists bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id = $1 AND email = $2)`,
		tenantID, params.AdminEmail,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(params.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	var adminUserID string
	if err := pool.QueryRow(ctx, `
		INSERT INTO users (tenant_id, role_id, email, password_hash)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		tenantID, adminRoleID, params.AdminEmail, hash,
	).Scan(&adminUserID); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		INSERT INTO employees (tenant_id, user_id, first_name, last_name, email, position, hire_date)
		VALUES ($1, $2, 'System', 'Administrator', $3, 'Administrator', $4)`,
		tenantID, adminUserID, params.AdminEmail, time.Now().UTC().Format("2006-01-02"),
	); err != nil {
		return fmt.Errorf("seed admin employee: %w", err)
	}

	slog.Info("seeded default tenant", "tenant", params.TenantName, "admin", params.AdminEmail)
	return nil
}
