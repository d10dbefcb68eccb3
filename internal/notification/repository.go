package notification

import (
	"context"
	"errors"
	"time"

	"github.com/govnotify/letterpipe/internal/postage"
	"gorm.io/gorm"
)

// Repository reads and writes letter notifications. Lookups consult the
// live table first and fall back to history; the historical flag tells the
// caller which table the row came from so updates land in the same place.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Notification, bool, error)
	Update(ctx context.Context, n *Notification, historical bool) error
	FindLettersToBeSent(ctx context.Context, cutoff time.Time, class postage.Class) ([]Notification, error)
	FindStuckSending(ctx context.Context, sentBefore time.Time) ([]Notification, error)
	MarkSending(ctx context.Context, ids []string, sentAt time.Time) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Notification, bool, error) {
	var live Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&live).Error
	if err == nil {
		return &live, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	var archived History
	err = r.db.WithContext(ctx).Where("id = ?", id).Take(&archived).Error
	if err == nil {
		return &archived.Notification, true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, ErrNotFound
	}
	return nil, false, err
}

func (r *GormRepository) Update(ctx context.Context, n *Notification, historical bool) error {
	table := Notification{}.TableName()
	if historical {
		table = History{}.TableName()
	}
	values := map[string]any{
		"status":         n.Status,
		"updated_at":     n.UpdatedAt,
		"sent_at":        n.SentAt,
		"billable_units": n.BillableUnits,
	}
	result := r.db.WithContext(ctx).Table(table).Where("id = ?", n.ID).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindLettersToBeSent returns real-key letters of the given postage class
// awaiting dispatch, oldest first.
func (r *GormRepository) FindLettersToBeSent(ctx context.Context, cutoff time.Time, class postage.Class) ([]Notification, error) {
	var rows []Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusCreated).
		Where("postage = ?", string(class)).
		Where("key_type <> ?", KeyTypeTest).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSending moves dispatched letters out of the collation candidate set.
// Only rows still in created move, so a letter dispatched by an earlier
// overlapping run is never stamped twice.
func (r *GormRepository) MarkSending(ctx context.Context, ids []string, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Table(Notification{}.TableName()).
		Where("id IN ?", ids).
		Where("status = ?", StatusCreated).
		Updates(map[string]any{
			"status":     StatusSending,
			"sent_at":    sentAt,
			"updated_at": sentAt,
		}).Error
}

// FindStuckSending returns normal-key letters still marked sending that
// were handed to the provider on or before the given instant.
func (r *GormRepository) FindStuckSending(ctx context.Context, sentBefore time.Time) ([]Notification, error) {
	var rows []Notification
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusSending).
		Where("key_type = ?", KeyTypeNormal).
		Where("sent_at <= ?", sentBefore).
		Order("sent_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
