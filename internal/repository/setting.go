// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/nodehub/nodehub/internal/models"
	"github.com/vinovest/sqlx"
)

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	if err := sqlx.GetContext(ctx, r.db, &s, `SELECT * FROM settings WHERE key = ?`, key); err != nil {
		return nil, wrapError(err)
	}
	return &s, nil
}

// ListSettings returns all settings ordered by key.
func (r *Repository) ListSettings(ctx context.Context) ([]models.Setting, error) {
	settings := []models.Setting{}
	if err := sqlx.SelectContext(ctx, r.db, &settings, `SELECT * FROM settings ORDER BY key`); err != nil {
		return nil, err
	}
	return settings, nil
}

// SetSetting creates or replaces a setting.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now())
	return err
}

// DeleteSetting removes a setting. Deleting a missing setting is not an error.
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	return err
}
