package tasks

import "go.uber.org/fx"

var Module = fx.Module("tasks",
	fx.Provide(NewOutbox),
	fx.Provide(func(o *Outbox) Queue { return o }),
)
