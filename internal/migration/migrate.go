package migration

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type appliedMigration struct {
	Name      string    `gorm:"primaryKey;type:text"`
	AppliedAt time.Time `gorm:"not null"`
}

func (appliedMigration) TableName() string { return "schema_migrations" }

// Run applies the embedded migrations in filename order, once each.
func Run(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	log = log.Named("migration")
	if err := db.WithContext(ctx).AutoMigrate(&appliedMigration{}); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	entries, err := embeddedMigrations.ReadDir(migrationsDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		var count int64
		err := db.WithContext(ctx).Model(&appliedMigration{}).Where("name = ?", name).Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		sql, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return err
		}
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(sql)).Error; err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
			return tx.Create(&appliedMigration{Name: name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return err
		}
		log.Info("migration applied", zap.String("name", name))
	}
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(func(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return Run(ctx, db, log)
			},
		})
	}),
)
