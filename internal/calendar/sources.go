package calendar

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// BankHoliday is one row of the bank_holidays table, loaded from the
// published holiday feed by an out-of-band import job.
type BankHoliday struct {
	Date  time.Time `gorm:"primaryKey;type:date"`
	Title string    `gorm:"type:text;not null"`
}

func (BankHoliday) TableName() string { return "bank_holidays" }

// DBSource reads bank holidays from the database.
type DBSource struct {
	db *gorm.DB
}

func NewDBSource(db *gorm.DB) *DBSource {
	return &DBSource{db: db}
}

func (s *DBSource) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	day := date.Format("2006-01-02")
	var count int64
	err := s.db.WithContext(ctx).
		Model(&BankHoliday{}).
		Where("date = ?", day).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemorySource is a fixed holiday set for tests.
type MemorySource struct {
	days map[string]struct{}
}

func NewMemorySource(dates ...time.Time) *MemorySource {
	s := &MemorySource{days: make(map[string]struct{})}
	for _, d := range dates {
		s.days[d.Format("2006-01-02")] = struct{}{}
	}
	return s
}

func (s *MemorySource) IsHoliday(_ context.Context, date time.Time) (bool, error) {
	_, ok := s.days[date.Format("2006-01-02")]
	return ok, nil
}
