package notification

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("notification",
	fx.Provide(func(db *gorm.DB) Repository {
		return NewGormRepository(db)
	}),
)
