package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/time/rate"

	server "bookstay/internal/adapters/http_server"
	"bookstay/internal/adapters/observability"
	redisad "bookstay/internal/adapters/redis"
	"bookstay/internal/app"
	"bookstay/internal/shared"
	"bookstay/internal/storage/mongodb"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo.Connect failed")
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("mongo ping failed")
	}
	log.Info().Msg("database connection ok")
	db := client.Database(cfg.MongoDB)

	// deps
	hotelRepo := mongodb.NewHotelRepo(db)
	roomRepo := mongodb.NewRoomRepo(db)
	userRepo := mongodb.NewUserRepo(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	hotels := app.NewHotelService(hotelRepo, cache, cfg.CacheTTL)
	rooms := app.NewRoomService(roomRepo, hotelRepo, cache)
	search := app.NewSearchService(hotelRepo, roomRepo, cache, cfg.CacheTTL)

	// http
	rl := rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateRPS)
	srv := server.New(rl)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Hotels:    hotels,
		Rooms:     rooms,
		Search:    search,
		Users:     userRepo,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
