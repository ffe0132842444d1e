package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tgmarketer/audit-bot/internal/app/handlers"
	"github.com/tgmarketer/audit-bot/internal/config"
	"github.com/tgmarketer/audit-bot/internal/registry"
	"github.com/tgmarketer/audit-bot/internal/repository"
	"github.com/tgmarketer/audit-bot/internal/scheduler"
	"github.com/tgmarketer/audit-bot/internal/service"
	"github.com/tgmarketer/audit-bot/pkg/telegram"
)

// App coordinates the Telegram update loop, the follow-up scheduler and
// the liveness HTTP server. All process-scoped singletons (recipient
// registry, scheduler) are created here and handed to the components
// that need them; they live until shutdown.
type App struct {
	cfg      *config.Config
	tgClient *telegram.Client
	handler  *handlers.Handler
	sched    *scheduler.FollowUpScheduler
}

func New(cfg *config.Config, repo repository.AuditRepository) *App {
	tgClient := telegram.NewClient(cfg.TelegramToken)
	recipients := registry.NewRecipients()

	var leads *service.LeadService
	sched := scheduler.NewFollowUpScheduler(func(ctx context.Context, job scheduler.Job) {
		leads.SendFollowUp(ctx, job)
	})
	leads = service.NewLeadService(repo, tgClient, sched, cfg.AdminContact, cfg.FollowUpDelayHours)
	broadcaster := service.NewBroadcaster(tgClient)

	return &App{
		cfg:      cfg,
		tgClient: tgClient,
		handler:  handlers.New(cfg, tgClient, leads, broadcaster, repo, recipients),
		sched:    sched,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.setCommands(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	a.sched.Start(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.handleUpdates(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.serveHealth(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}

func (a *App) handleUpdates(ctx context.Context) {
	offset := 0
	for {
		updates, err := a.tgClient.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("get updates")
			time.Sleep(time.Second)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			switch {
			case u.Message != nil:
				a.handler.HandleMessage(ctx, u.Message)
			case u.CallbackQuery != nil:
				a.handler.HandleCallback(ctx, u.CallbackQuery)
			}
		}
	}
}

// serveHealth runs the always-200 liveness endpoint hosting platforms
// probe. It never touches bot state.
func (a *App) serveHealth(ctx context.Context) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("health server")
	}
}

func (a *App) setCommands(ctx context.Context) {
	cmds := []telegram.BotCommand{
		{Command: "start", Description: "Главное меню"},
		{Command: "admin", Description: "Меню администратора"},
	}
	if err := a.tgClient.SetCommands(ctx, cmds); err != nil {
		log.Error().Err(err).Msg("set commands")
	}
}
