package editions

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/core/indexer"
	"github.com/mintforge/edition-engine/internal/config"
	"github.com/mintforge/edition-engine/internal/postgres"
	"github.com/mintforge/edition-engine/modules/editions/api/httphandler"
	"github.com/mintforge/edition-engine/modules/editions/datagateway"
	"github.com/mintforge/edition-engine/modules/editions/internal/entity"
	"github.com/mintforge/edition-engine/modules/editions/processor"
	editionsmemory "github.com/mintforge/edition-engine/modules/editions/repository/memory"
	editionspostgres "github.com/mintforge/edition-engine/modules/editions/repository/postgres"
	editionsusecase "github.com/mintforge/edition-engine/modules/editions/usecase"
	"github.com/mintforge/edition-engine/pkg/logger"
	"github.com/mintforge/edition-engine/pkg/notifyclient"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

// Version of the editions module, reported by the version command.
const Version = processor.Version

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	notifyClient := do.MustInvoke[*notifyclient.NotifyClient](injector)

	var (
		editionsDg   datagateway.EditionsDataGateway
		engineInfoDg datagateway.EngineInfoDataGateway
	)
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(conf.Modules.Editions.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Modules.Editions.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for edition engine")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		repo := editionspostgres.NewRepository(pg)
		editionsDg = repo
		engineInfoDg = repo
	case "memory":
		repo := editionsmemory.NewRepository()
		editionsDg = repo
		engineInfoDg = repo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for edition engine is not supported", conf.Modules.Editions.Database)
	}

	// The dispatcher is created unconditionally so command processing never
	// blocks on notice consumption, even with notify disabled.
	dispatcher := processor.NewNoticeDispatcher(notifyClient, conf.Network, cleanupFuncs)

	editionsProcessor, err := processor.NewProcessor(editionsDg, engineInfoDg, conf.Network, conf.Modules.Editions, dispatcher.DrawNotices(), dispatcher.ApprovalNotices())
	if err != nil {
		return nil, errors.Wrap(err, "can't create processor")
	}
	if err := editionsProcessor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.Editions.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			editionsUsecase := editionsusecase.New(editionsDg)
			editionsHTTPHandler := httphandler.New(conf.Network, editionsUsecase, editionsProcessor)
			if err := editionsHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount Editions API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	workers := make([]indexer.IndexerWorker, 0, 3)
	if notifyClient != nil {
		resolver := indexer.New[*entity.PendingTransfer](
			processor.NewTransferResolver(editionsProcessor, notifyClient, conf.Network),
			processor.NewPendingTransferDatasource(editionsDg),
		)
		resolver.Interval = processor.ResolverPollingInterval
		workers = append(workers, resolver)
	}
	if !conf.Modules.Editions.Archive.Disabled {
		eventArchiver, err := processor.NewEventArchiver(ctx, engineInfoDg, conf.Modules.Editions.Archive)
		if err != nil {
			return nil, errors.Wrap(err, "can't create event archiver")
		}
		archiveWorker := indexer.New[*entity.Event](
			eventArchiver,
			processor.NewArchiveEventsDatasource(editionsDg, engineInfoDg, eventArchiver.BatchSize()),
		)
		archiveWorker.Interval = processor.DefaultArchiveInterval
		if conf.Modules.Editions.Archive.Interval > 0 {
			archiveWorker.Interval = conf.Modules.Editions.Archive.Interval
		}
		workers = append(workers, archiveWorker)
	}
	// last, so cleanup runs after the database users stopped
	workers = append(workers, dispatcher)

	return indexer.NewGroup(workers...), nil
}
