package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/spooky/internal/theme"
)

// PreferenceRepository implements theme.Store over the preferences table.
type PreferenceRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ theme.Store = (*PreferenceRepository)(nil)

func newPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db, now: time.Now}
}

// Get implements theme.Store.
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	m, err := r.Find(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return m.Value, true, nil
}

// Set implements theme.Store. Existing keys are overwritten.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save preference %q: %w", key, err)
	}
	return nil
}

// Find returns the full row for key, or sql.ErrNoRows.
func (r *PreferenceRepository) Find(ctx context.Context, key string) (*PreferenceModel, error) {
	var m PreferenceModel
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM preferences WHERE key = ?`, key,
	).Scan(&m.Key, &m.Value, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return &m, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %q: %w", key, err)
	}
	return nil
}
