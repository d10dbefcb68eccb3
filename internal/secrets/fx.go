package secrets

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("secrets",
	fx.Provide(func(db *gorm.DB) Store {
		return NewDBStore(db)
	}),
)
