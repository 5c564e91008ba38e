package distribution

import (
	"github.com/commonshq/samiti/internal/distribution/repository"
	"github.com/commonshq/samiti/internal/distribution/service"
	"go.uber.org/fx"
)

var Module = fx.Module("distribution.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
