package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"Lee_Microblog/internal/config"
	"Lee_Microblog/internal/jobs"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"
	"Lee_Microblog/internal/service"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

// Application 进程生命周期：seed -> 定时任务 -> http，收到信号后按相反顺序关闭
type Application struct {
	cfg      *config.Config
	db       *gorm.DB
	rdb      *redis.Client
	producer *pkg.KafkaProducer
	engine   *gin.Engine
	quartz   *jobs.Scheduler
	seeder   *service.Seeder
}

func NewApplication(cfg *config.Config, db *gorm.DB, rdb *redis.Client, producer *pkg.KafkaProducer,
	engine *gin.Engine, quartz *jobs.Scheduler, seeder *service.Seeder) *Application {
	return &Application{cfg: cfg, db: db, rdb: rdb, producer: producer, engine: engine, quartz: quartz, seeder: seeder}
}

func (a *Application) Run() error {
	if a.cfg.App.Seed {
		keys, err := a.seeder.Seed(context.Background())
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		for name, key := range keys {
			log.Info().Str("user", name).Str("api_key", key).Msg("Seeded sample user.")
		}
	}

	a.quartz.Start()

	srv := &http.Server{Addr: a.cfg.App.Listen, Handler: a.engine}
	go func() {
		log.Info().Str("listen", a.cfg.App.Listen).Msg("HTTP server started.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("An error occurred when starting the HTTP server.")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	a.quartz.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server did not shut down cleanly.")
	}
	a.close()
	return nil
}

func (a *Application) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			log.Warn().Err(err).Msg("Close kafka writer failed.")
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("Close redis failed.")
		}
	}
	if err := database.Close(a.db); err != nil {
		log.Warn().Err(err).Msg("Close database failed.")
	}
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" __  __ _                _     _             \n|  \\/  (_) ___ _ __ ___ | |__ | | ___   __ _ \n| |\\/| | |/ __| '__/ _ \\| '_ \\| |/ _ \\ / _` |\n| |  | | | (__| | | (_) | |_) | | (_) | (_| |\n|_|  |_|_|\\___|_|  \\___/|_.__/|_|\\___/ \\__, |\n                                       |___/ "))
	fmt.Printf("%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Lee.Microblog"))
	fmt.Printf("Feed ranking and social graph service\n")
	color.HiBlack("=====================================================\n")

	container, err := BuildContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("An error occurred when building the container.")
	}

	if err = container.Invoke(func(cfg *config.Config) {
		if cfg.App.IsProduction() {
			log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		}
		if level, perr := zerolog.ParseLevel(cfg.App.LogLevel); perr == nil {
			zerolog.SetGlobalLevel(level)
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when loading settings.")
	}

	if err = container.Invoke(func(app *Application) error {
		return app.Run()
	}); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running the application.")
	}
}
