package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"netsoc/blog"
	"netsoc/bookdata"
	"netsoc/cli"
	"netsoc/config"
	"netsoc/database"
	"netsoc/library"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	if cfg.Development {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := database.Open(database.MySQL(cfg.DB))
	if err != nil {
		log.Fatal().Err(err).Msg("database error")
	}
	defer database.Close(db)

	books := bookdata.New(cfg.BookData.Key, cfg.BookData.Secret)

	app := cli.New(cfg, db, blog.NewService(db), library.NewService(db, books))

	if err := app.RootCommand().Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
