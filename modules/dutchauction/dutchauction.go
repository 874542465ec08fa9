package dutchauction

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mintfall/auction-engine/internal/config"
	"github.com/mintfall/auction-engine/internal/postgres"
	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/repository/memory"
	repository "github.com/mintfall/auction-engine/modules/dutchauction/repository/postgres"
	"github.com/mintfall/auction-engine/modules/dutchauction/sandbox"
	"github.com/mintfall/auction-engine/modules/dutchauction/splits"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/samber/do/v2"
)

// New assembles the engine from application configuration. External
// MintRegistry and ValueTransfer adapters provided through the injector take
// precedence; without them the module falls back to the in-process sandbox.
func New(injector do.Injector) (*Engine, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.DutchAuction

	var dg datagateway.DutchAuctionDataGateway
	if moduleConf.Postgres.IsZero() {
		logger.InfoContext(ctx, "No postgres configured for dutch auction module, using in-memory repository")
		dg = memory.NewRepository()
	} else {
		pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "can't create postgres connection pool")
		}
		go func() {
			<-ctx.Done()
			pg.Close()
		}()
		dg = repository.NewRepository(pg)
	}

	registry, err := do.Invoke[MintRegistry](injector)
	if err != nil {
		logger.InfoContext(ctx, "No mint registry provided, using sandbox registry")
		registry = sandbox.NewRegistry(moduleConf.Sandbox)
	}
	transfer, err := do.Invoke[ValueTransfer](injector)
	if err != nil {
		logger.InfoContext(ctx, "No value transfer provided, using sandbox bank")
		transfer = sandbox.NewBank()
	}

	splitProvider, err := splits.NewStaticProvider(moduleConf.Splits)
	if err != nil {
		return nil, errors.Wrap(err, "invalid split configuration")
	}

	engine := NewEngine(Flavor{
		Currency:    Currency(moduleConf.Currency),
		MinHalfLife: moduleConf.MinHalfLife,
		MaxHalfLife: moduleConf.MaxHalfLife,
	}, dg, registry, transfer, splitProvider)

	logger.InfoContext(ctx, "Dutch auction module started")
	return engine, nil
}
