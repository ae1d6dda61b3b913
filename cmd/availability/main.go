package main

import (
	"context"

	auditHandler "staybook/internal/audit/handler"
	auditRepository "staybook/internal/audit/repository"
	auditService "staybook/internal/audit/service"
	availabilityHandler "staybook/internal/availability/handler"
	availabilityService "staybook/internal/availability/service"
	bookingHandler "staybook/internal/bookings/handler"
	bookingService "staybook/internal/bookings/service"
	eventRepository "staybook/internal/eventlog/repository"
	"staybook/internal/ledger"
	listingHandler "staybook/internal/listings/handler"
	listingRepository "staybook/internal/listings/repository"
	listingService "staybook/internal/listings/service"
	"staybook/pkg/app"
	"staybook/pkg/config"
	"staybook/pkg/validation"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Availability service")

	reconciler := ledger.NewReconciler(
		eventRepository.NewMongoLedgerEventRepository(cfg),
		ledger.Options{
			Lookback:       cfg.LedgerLookbackBlocks,
			DeployPosition: cfg.LedgerDeployBlock,
			CheckInHourUTC: cfg.CheckInHourUTC,
		},
		cfg.Log,
	)

	listingRepo := listingRepository.NewMongoListingRepository(cfg)
	var directory listingRepository.Directory = listingRepo
	var invalidator listingService.OwnerInvalidator
	if cfg.Client.Redis != nil {
		cached := listingRepository.NewCachedDirectory(
			listingRepo,
			listingRepository.NewRedisOwnerCache(cfg.Client.Redis),
			cfg.ListingOwnerCacheTTL,
			cfg.Log,
		)
		directory = cached
		invalidator = cached
	}

	listings := listingService.NewListingService(listingRepo, invalidator, validation.New(cfg.Log), cfg)
	bookings := bookingService.NewBookingService(reconciler, directory, cfg.Log)
	availability := availabilityService.NewAvailabilityService(reconciler, cfg.Log)
	audit := auditService.NewAuditService(reconciler, auditRepository.NewMongoRunRepository(cfg), cfg.Log)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		listingHandler.NewListingHandler(listings, cfg.Log),
		bookingHandler.NewBookingHandler(bookings, cfg.Log),
		availabilityHandler.NewAvailabilityHandler(availability, cfg.Log),
		auditHandler.NewAuditHandler(audit, cfg.Log),
	)

	if cfg.AuditCron == "" {
		cfg.Log.Info("Reconciliation audit disabled")
	} else {
		scheduler, err := auditService.NewScheduler(cfg.AuditCron, audit, cfg.ReadTimeout*3, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to schedule reconciliation audit", "error", err)
		}
		scheduler.Start()
		serverApp.OnShutdown(func(ctx context.Context) { scheduler.Stop(ctx) })
	}

	serverApp.Run()
}
