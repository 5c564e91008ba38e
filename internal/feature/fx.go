package feature

import (
	"github.com/commonshq/samiti/internal/feature/repository"
	"github.com/commonshq/samiti/internal/feature/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feature.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
