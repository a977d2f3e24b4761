package api

import (
	"github.com/ghaggin/portal/internal/repository"
	"github.com/ghaggin/portal/internal/token"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		New,
		NewController,
		repository.NewJSON,
		token.NewIssuer,
	),
)
