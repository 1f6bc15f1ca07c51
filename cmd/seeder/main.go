// The seeder loads a JSON fixture of hotels with their rooms and inserts them
// through the regular services, so every insert exercises the same validation
// and link writes as the API.
package main

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/semaphore"

	"bookstay/internal/adapters/observability"
	redisad "bookstay/internal/adapters/redis"
	"bookstay/internal/app"
	"bookstay/internal/domain"
	"bookstay/internal/shared"
	"bookstay/internal/storage/mongodb"
)

type seedEntry struct {
	Hotel domain.Hotel  `json:"hotel"`
	Rooms []domain.Room `json:"rooms"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.Workers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file failed")
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("mongo.Connect failed")
	}
	if err := client.Ping(connCtx, nil); err != nil {
		log.Fatal().Err(err).Msg("mongo ping failed")
	}
	log.Info().Msg("db ping ok")
	db := client.Database(cfg.MongoDB)

	hotelRepo := mongodb.NewHotelRepo(db)
	roomRepo := mongodb.NewRoomRepo(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	hotels := app.NewHotelService(hotelRepo, cache, cfg.CacheTTL)
	rooms := app.NewRoomService(roomRepo, hotelRepo, cache)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, e := range entries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(e seedEntry) {
			defer wg.Done()
			defer sem.Release(1)

			h, err := hotels.Create(ctx, e.Hotel)
			if err != nil {
				log.Warn().Str("name", e.Hotel.Name).Err(err).Msg("seed hotel failed")
				return
			}
			for _, rm := range e.Rooms {
				if _, err := rooms.Create(ctx, h.ID, rm); err != nil {
					log.Warn().Str("hotel", h.ID.Hex()).Str("title", rm.Title).Err(err).Msg("seed room failed")
				}
			}
			log.Info().Str("id", h.ID.Hex()).Str("name", h.Name).Int("rooms", len(e.Rooms)).Msg("seed ok")
		}(e)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
