package main

import (
	"flag"

	"github.com/ghaggin/portal/internal/api"
	"github.com/ghaggin/portal/internal/config"
	"github.com/ghaggin/portal/internal/web"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var mode = flag.String("mode", string(config.ModeWeb), "either web or api")
	flag.Parse()

	deps := fx.Options(
		fx.Provide(
			newLogger,
			config.New,
		),
	)

	var app *fx.App
	switch config.Mode(*mode) {
	case config.ModeWeb:
		app = fx.New(
			deps,
			web.Module,
			fx.Invoke(web.RegisterHooks),
		)
	case config.ModeAPI:
		app = fx.New(
			deps,
			api.Module,
			fx.Invoke(api.RegisterHooks),
		)
	default:
		panic("unrecognized mode")
	}

	app.Run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
