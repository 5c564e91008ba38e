package event

import (
	"github.com/commonshq/samiti/internal/event/repository"
	"github.com/commonshq/samiti/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
