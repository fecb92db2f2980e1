// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/comicpass/internal/api"
	"github.com/taibuivan/comicpass/internal/billing/order"
	"github.com/taibuivan/comicpass/internal/billing/purchase"
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/core/comic"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
	"github.com/taibuivan/comicpass/internal/library/reader"
	"github.com/taibuivan/comicpass/internal/platform/config"
	"github.com/taibuivan/comicpass/internal/platform/constants"
	pgstore "github.com/taibuivan/comicpass/internal/platform/postgres"
	redisstore "github.com/taibuivan/comicpass/internal/platform/redis"
	"github.com/taibuivan/comicpass/internal/users/account"
)

// wire builds every repository, service and handler. Nothing here does I/O.
func wire(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client, log *slog.Logger) api.Handlers {
	liveness, readiness := api.NewHealthHandlers([]api.Probe{
		{Name: "postgres", Critical: true, Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	comicRepository := comic.NewRepository(pool)
	chapterRepository := chapter.NewRepository(pool)

	comicService := comic.NewService(comicRepository, log)
	chapterService := chapter.NewService(chapterRepository, comicRepository, log)

	entitlementService := entitlement.NewService(
		entitlement.NewRepository(pool),
		entitlement.NewRedisCache(rdb, cfg.EntitlementCacheTTL, log),
		comicRepository,
		chapterRepository,
		log,
	)

	// The engine owns every balance write: purchases and operator credits.
	engine := purchase.NewEngine(purchase.NewPostgresTransactor(pool), purchase.Options{
		ChapterPrice: cfg.ChapterPrice,
		MaxAttempts:  cfg.PurchaseMaxAttempts,
		Backoff:      constants.PurchaseRetryBackoff,
		TxTimeout:    constants.PurchaseTxTimeout,
		Invalidator:  entitlementService,
	}, log)

	accountService := account.NewService(account.NewRepository(pool), engine, cfg.StartingGrant, log)
	orderService := order.NewService(order.NewRepository(pool), log)
	readerService := reader.NewService(chapterService, entitlementService, log)

	return api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Account:     account.NewHandler(accountService),
		Comic:       comic.NewHandler(comicService),
		Chapter:     chapter.NewHandler(chapterService),
		Entitlement: entitlement.NewHandler(entitlementService),
		Reader:      reader.NewHandler(readerService),
		Order:       order.NewHandler(orderService),
		Purchase:    purchase.NewHandler(engine),
	}
}
