package commission

import (
	"github.com/commonshq/samiti/internal/commission/repository"
	"github.com/commonshq/samiti/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
