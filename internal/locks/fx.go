package locks

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("locks",
	fx.Provide(func(db *gorm.DB, log *zap.Logger) Locker {
		return NewDBLocker(db, log)
	}),
)
