package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram-sub001/internal/httpserver"
	"github.com/rohanluthra13/cryptogram-sub001/internal/puzzles"
	"github.com/rohanluthra13/cryptogram-sub001/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	src, err := puzzles.NewSource(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzles")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, src, db)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting cryptogram-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
