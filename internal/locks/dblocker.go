package locks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBLocker implements Locker on a database table so the lock is shared
// across worker processes. A row per lock name; stale rows (beyond the
// claim TTL) can be reclaimed so a crashed holder does not wedge rotation
// forever.
type DBLocker struct {
	db  *gorm.DB
	log *zap.Logger
	ttl time.Duration
	now func() time.Time
}

func NewDBLocker(db *gorm.DB, log *zap.Logger) *DBLocker {
	return &DBLocker{
		db:  db,
		log: log.Named("locks"),
		ttl: 5 * time.Minute,
		now: time.Now,
	}
}

func (l *DBLocker) TryAcquire(ctx context.Context, name string) (func(), error) {
	if l == nil || l.db == nil {
		return nil, errors.New("locker_unavailable")
	}

	holder := uuid.NewString()
	now := l.now().UTC()
	expires := now.Add(l.ttl)

	result := l.db.WithContext(ctx).Exec(
		`INSERT INTO named_locks (name, holder, acquired_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE
		 SET holder = excluded.holder,
		     acquired_at = excluded.acquired_at,
		     expires_at = excluded.expires_at
		 WHERE named_locks.expires_at <= ?`,
		name,
		holder,
		now,
		expires,
		now,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrLockHeld
	}

	release := func() {
		err := l.db.Exec(
			`DELETE FROM named_locks WHERE name = ? AND holder = ?`,
			name,
			holder,
		).Error
		if err != nil {
			l.log.Warn("failed to release lock", zap.String("lock", name), zap.Error(err))
		}
	}
	return release, nil
}
