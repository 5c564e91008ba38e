package payment

import (
	"github.com/commonshq/samiti/internal/payment/repository"
	"github.com/commonshq/samiti/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
