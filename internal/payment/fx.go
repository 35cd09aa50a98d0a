package payment

import (
	"github.com/smallbiznis/bukukas/internal/payment/adapters"
	"github.com/smallbiznis/bukukas/internal/payment/adapters/xendit"
	paymentdomain "github.com/smallbiznis/bukukas/internal/payment/domain"
	"github.com/smallbiznis/bukukas/internal/payment/repository"
	paymentservice "github.com/smallbiznis/bukukas/internal/payment/service"
	"github.com/smallbiznis/bukukas/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(
			xendit.NewDescriptionAdapter(),
			xendit.NewExternalIDAdapter(),
		)
	}),
	fx.Provide(
		fx.Annotate(
			paymentservice.NewService,
			fx.As(new(paymentdomain.Reconciler)),
		),
	),
	fx.Provide(webhook.NewService),
)
