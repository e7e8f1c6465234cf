package di

import (
	"go.uber.org/fx"

	"github.com/ialim/orderflow/internal/adapter/events"
	"github.com/ialim/orderflow/internal/app"
	"github.com/ialim/orderflow/internal/config"
	"github.com/ialim/orderflow/internal/logger"
	"github.com/ialim/orderflow/internal/pkg/auth"
	"github.com/ialim/orderflow/internal/server/http/handlers"
	"github.com/ialim/orderflow/internal/server/http/router"
	"github.com/ialim/orderflow/internal/storage/postgres"
	"github.com/ialim/orderflow/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		events.Module,
		usecase.Module,
		fx.Provide(func(f *app.OrderflowFacade) handlers.OrderflowFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
