package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
)

type adminStore struct {
	*MYSQLStore
}

// Admin returns an object implementing Admin interface
func (ms *MYSQLStore) Admin() dependency.Admin {
	return &adminStore{
		MYSQLStore: ms,
	}
}

func (ms *adminStore) AddAdmin(ctx context.Context, un, pwHash string) error {
	err := ExecNamed(ctx, ms.DB(),
		`INSERT INTO admins (username, password_hash) VALUES (:username, :passwordHash)`,
		map[string]any{"username": un, "passwordHash": pwHash})
	if err != nil {
		return fmt.Errorf("can't add admin: %w", err)
	}
	return nil
}

func (ms *adminStore) DeleteAdmin(ctx context.Context, username string) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`DELETE FROM admins WHERE username = :username`, map[string]any{"username": username})
	if err != nil {
		return fmt.Errorf("can't delete admin: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}

func (ms *adminStore) ChangePassword(ctx context.Context, un, newHash string) error {
	n, err := ExecNamedRows(ctx, ms.DB(),
		`UPDATE admins SET password_hash = :passwordHash WHERE username = :username`,
		map[string]any{"username": un, "passwordHash": newHash})
	if err != nil {
		return fmt.Errorf("can't change password: %w", err)
	}
	if n == 0 {
		return gerr.ErrNotFound
	}
	return nil
}

func (ms *adminStore) PasswordHashByUsername(ctx context.Context, un string) (string, error) {
	var hash string
	err := ms.DB().GetContext(ctx, &hash,
		`SELECT password_hash FROM admins WHERE username = ?`, un)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", gerr.ErrNotFound
		}
		return "", fmt.Errorf("can't get password hash: %w", err)
	}
	return hash, nil
}

func (ms *adminStore) GetAdminByUsername(ctx context.Context, username string) (*entity.Admin, error) {
	admin, err := QueryNamedOne[entity.Admin](ctx, ms.DB(),
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = :username`,
		map[string]any{"username": username})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrNotFound
		}
		return nil, fmt.Errorf("can't get admin: %w", err)
	}
	return &admin, nil
}

func (ms *adminStore) ListAdmins(ctx context.Context) ([]entity.Admin, error) {
	admins, err := QueryListNamed[entity.Admin](ctx, ms.DB(),
		`SELECT id, username, password_hash, created_at FROM admins ORDER BY username ASC`,
		map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't list admins: %w", err)
	}
	return admins, nil
}
