package collate

import (
	"context"

	"github.com/govnotify/letterpipe/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("collate",
	fx.Provide(func(cfg config.Config) (*Window, error) {
		return NewWindow(cfg.Letters)
	}),
	fx.Provide(NewEngine),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
	})
}
