package member

import (
	"github.com/commonshq/samiti/internal/member/repository"
	"github.com/commonshq/samiti/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
