package calendar

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("calendar",
	fx.Provide(func(db *gorm.DB) HolidaySource {
		return NewDBSource(db)
	}),
	fx.Provide(New),
)
