package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/checkout"
	"github.com/vasiliy-maslov/storefront/internal/config"
	"github.com/vasiliy-maslov/storefront/internal/db"
	"github.com/vasiliy-maslov/storefront/internal/handler"
	"github.com/vasiliy-maslov/storefront/internal/identity"
	"github.com/vasiliy-maslov/storefront/internal/kv"
	"github.com/vasiliy-maslov/storefront/internal/notify"
	"github.com/vasiliy-maslov/storefront/internal/order"
	"github.com/vasiliy-maslov/storefront/internal/profile"
	"github.com/vasiliy-maslov/storefront/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "storefront").Logger()

	log.Info().Msg("Storefront starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Хранилище и стор корзины. Активная корзина стартует гостевой.
	cartStore := cart.NewStore(kv.NewRedis(redisClient))
	if err := cartStore.Load(ctx, cart.GuestKey); err != nil {
		log.Fatal().Err(err).Msg("Failed to load guest cart")
	}

	// Каталог: полный снапшот при старте, дальше — по явному Refresh.
	catalogService := catalog.NewService(catalog.NewRepository(dbConn.Pool), cfg.App.RequestTimeout)
	if _, err := catalogService.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to load initial catalog snapshot")
	}

	hub := notify.NewHub()

	identityService := identity.NewService(identity.NewRepository(dbConn.Pool))
	manager := identity.NewManager(cartStore)

	orderService := order.NewService(order.NewRepository(dbConn.Pool))
	profileService := profile.NewService(profile.NewRepository(dbConn.Pool))

	workflow := checkout.NewWorkflow(cartStore, catalogService, orderService, profileService, hub, cfg.App.RequestTimeout)
	// После подтверждённого заказа списки перечитываются с сервера:
	// собственный — всегда, административный — для админа.
	workflow.OnRefresh(func(ctx context.Context, user *identity.User) {
		if user == nil {
			return
		}
		if _, err := orderService.ListByUser(ctx, user.ID); err != nil {
			log.Warn().Err(err).Msg("Failed to refresh user order list")
		}
		if user.IsAdmin {
			if _, err := orderService.ListAll(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to refresh admin order list")
			}
		}
	})

	statusFlow := order.NewStatusFlow(orderService, cfg.App.RequestTimeout, hub)

	router := transport.NewRouter(identityService, transport.Handlers{
		Auth:    handler.NewAuthHandler(identityService, manager),
		Catalog: handler.NewCatalogHandler(catalogService),
		Cart:    handler.NewCartHandler(cartStore, catalogService),
		Order:   handler.NewOrderHandler(workflow, statusFlow, orderService, hub),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
