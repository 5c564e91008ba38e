package campaign

import (
	"github.com/commonshq/samiti/internal/campaign/repository"
	"github.com/commonshq/samiti/internal/campaign/service"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
