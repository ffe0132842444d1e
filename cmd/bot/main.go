package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/app"
	"github.com/tgmarketer/audit-bot/internal/config"
	"github.com/tgmarketer/audit-bot/internal/logger"
	"github.com/tgmarketer/audit-bot/internal/repository"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger.Init("audit-bot", cfg.Debug)

	var repo repository.AuditRepository
	if cfg.DBConnString != "" {
		pg, err := repository.NewPostgresAuditRepository(cfg.DBConnString)
		if err != nil {
			log.Fatal().Err(err).Msg("connect postgres")
		}
		repo = pg
	} else {
		repo = repository.NewFileAuditRepository(cfg.AuditsPath)
	}

	application := app.New(cfg, repo)
	if err := application.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}
