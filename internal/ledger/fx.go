package ledger

import (
	"github.com/smallbiznis/bukukas/internal/ledger/service"
	"go.uber.org/fx"
)

// Module provides the ledger poster used inside the payment unit of work.
var Module = fx.Module("ledger",
	fx.Provide(service.NewService),
)
