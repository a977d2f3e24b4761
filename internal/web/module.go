package web

import (
	"github.com/ghaggin/portal/internal/client"
	"github.com/ghaggin/portal/internal/form"
	"github.com/ghaggin/portal/internal/middleware"
	"github.com/ghaggin/portal/internal/template"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		New,
		middleware.NewSessionManager,
		client.New,
		form.NewRegistry,
		template.New,
	),
)
