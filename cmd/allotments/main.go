package main

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayops/internal/adapters/observability"
	"stayops/internal/domain"
	"stayops/internal/shared"
	mysqlrepo "stayops/internal/storage/mysql"
)

// Seeds one allotment row per active room type per day, SEED_DAYS ahead.
// Existing rows keep their allocation; only capacity and restrictions are
// rewritten.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.SeedWorkers).
		Int("days", cfg.SeedDays).
		Int("quantity", cfg.SeedQuantity).
		Msg("allotment seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	roomTypes, err := repo.ListActiveRoomTypes(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list room types failed")
	}
	if len(roomTypes) == 0 {
		log.Warn().Msg("no active room types; nothing to seed")
		return
	}

	start := domain.DateOnly(time.Now())
	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, rt := range roomTypes {
		rt := rt

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(roomType domain.RoomType) {
			defer wg.Done()
			defer sem.Release(int64(1))

			for i := 0; i < cfg.SeedDays; i++ {
				a := domain.Allotment{
					RoomTypeID: roomType.ID,
					Date:       start.AddDate(0, 0, i),
					Quantity:   cfg.SeedQuantity,
				}
				if err := repo.UpsertAllotment(ctx, a); err != nil {
					log.Warn().Int64("room_type", roomType.ID).Err(err).Msg("seed failed")
					return
				}
			}
			log.Info().Int64("room_type", roomType.ID).Str("code", roomType.Code).Msg("seed ok")
		}(rt)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
