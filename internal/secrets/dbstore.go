package secrets

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// DBStore keeps secrets in the primary database. Deployments that use an
// external secret manager swap this out behind the Store interface.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) GetSecret(ctx context.Context, name string) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("secret_store_unavailable")
	}
	var value string
	err := s.db.WithContext(ctx).Raw(
		`SELECT value FROM secrets WHERE name = ?`,
		name,
	).Scan(&value).Error
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (s *DBStore) SetSecret(ctx context.Context, name, value string) error {
	if s == nil || s.db == nil {
		return errors.New("secret_store_unavailable")
	}
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Exec(
		`INSERT INTO secrets (name, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name,
		value,
		now,
	).Error
}
