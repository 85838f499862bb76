package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fishmix/servebot/internal/bot"
	"github.com/fishmix/servebot/internal/config"
	"github.com/fishmix/servebot/internal/console"
	"github.com/fishmix/servebot/internal/handler"
	"github.com/fishmix/servebot/internal/logger"
	"github.com/fishmix/servebot/internal/serveme"
	"github.com/fishmix/servebot/internal/store"
)

type App struct {
	logger     *logger.Logger
	infraCfg   *config.Config
	featureCfg *config.FeatureConfig
	store      store.Store
	session    *discordgo.Session
	bot        *bot.Bot
	statusSrv  *http.Server
}

func main() {
	app := &App{logger: logger.New()}
	if err := app.run(); err != nil {
		app.logger.Error("Application error", logger.Error(err))
		os.Exit(1)
	}
}

func (a *App) run() error {
	if err := a.initialize(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.bot.Attach(ctx, a.session)
	if err := a.session.Open(); err != nil {
		a.logger.Error("Failed to open gateway connection", logger.Error(err))
		return err
	}
	a.logger.Info("Bot connected", logger.Action("startup"), logger.Status("ready"))

	sweeper := bot.NewSweeper(a.store, a.logger, a.featureCfg.SweepInterval(), a.featureCfg.Grace())
	go sweeper.Run(ctx)

	if a.statusSrv != nil {
		go func() {
			a.logger.Info("Status endpoint listening",
				logger.Action("startup"), logger.F("ADDR", a.statusSrv.Addr))
			if err := a.statusSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Error("Status endpoint failed", logger.Error(err))
			}
		}()
	}

	<-ctx.Done()
	a.logger.Info("Shutting down", logger.Action("shutdown"))
	a.shutdown()
	return nil
}

func (a *App) initialize() error {
	infraCfg, err := config.LoadWithFile(".env")
	if err != nil {
		a.logger.Error("Failed to load infrastructure config", logger.Error(err))
		return err
	}
	a.infraCfg = infraCfg

	featureCfg, err := config.LoadFeatureConfig(infraCfg.ConfigPath)
	if err != nil {
		a.logger.Error("Failed to load feature config",
			logger.Error(err), logger.F("path", infraCfg.ConfigPath))
		return err
	}
	a.featureCfg = featureCfg

	if infraCfg.DBPath != "" {
		st, err := store.NewSQLiteStore(infraCfg.DBPath)
		if err != nil {
			a.logger.Error("Failed to open reservation store",
				logger.Error(err), logger.F("path", infraCfg.DBPath))
			return err
		}
		a.store = st
		a.logger.Info("Reservation store ready", logger.Status("sqlite"), logger.F("path", infraCfg.DBPath))
	} else {
		a.store = store.NewMemoryStore()
		a.logger.Info("Reservation store ready", logger.Status("memory"))
	}

	session, err := discordgo.New("Bot " + infraCfg.DiscordToken)
	if err != nil {
		a.logger.Error("Failed to create gateway session", logger.Error(err))
		return err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	a.session = session

	api := serveme.New(infraCfg.ServemeBaseURL, infraCfg.ServemeAPIKey)
	a.bot = bot.New(featureCfg, a.logger, a.store, api, console.NewRunner(), bot.NewSessionMessenger(session))

	if infraCfg.StatusAddr != "" {
		a.statusSrv = &http.Server{
			Addr:              infraCfg.StatusAddr,
			Handler:           handler.NewStatusHandler(a.store, a.logger).Mux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return nil
}

func (a *App) shutdown() {
	a.bot.Notifier().Shutdown()

	if a.statusSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.statusSrv.Shutdown(ctx); err != nil {
			a.logger.Error("Failed to stop status endpoint", logger.Error(err))
		}
	}
	if err := a.session.Close(); err != nil {
		a.logger.Error("Failed to close gateway session", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close reservation store", logger.Error(err))
	}
}
