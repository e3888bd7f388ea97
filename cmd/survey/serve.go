package main

import (
	"accioncsat/internal/cache"
	"accioncsat/internal/form"
	"accioncsat/internal/service"
	"accioncsat/internal/transport/rest"
	"accioncsat/internal/transport/ws"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	servePort        string
	serveRedisURL    string
	serveSubmitDelay time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the survey HTTP and WebSocket service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveRedisURL, "redis-url", "", "Redis URL for sessions (overrides REDIS_URL)")
	serveCmd.Flags().DurationVar(&serveSubmitDelay, "submit-delay", -1, "Simulated submission delay (overrides SUBMIT_DELAY)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Port = servePort
	}
	if serveRedisURL != "" {
		cfg.RedisURL = serveRedisURL
	}
	if serveSubmitDelay >= 0 {
		cfg.SubmitDelay = serveSubmitDelay
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	survey, err := loadSchema()
	if err != nil {
		return err
	}
	logger.Info("questionnaire loaded",
		zap.String("title", survey.Title),
		zap.Int("questions", len(survey.Questions())),
	)

	// Session store
	var sessions cache.SessionCache
	if cfg.UsesRedis() {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions = cache.NewSessionCache(rdb, cfg.SessionTTL)
		logger.Info("connected to Redis")
	} else {
		sessions = cache.NewMemorySessionCache(cfg.SessionTTL)
		logger.Info("sessions kept in memory")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	// Initialize services
	tokens := service.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	submitter := service.NewSimulatedSubmitter(cfg.SubmitDelay, logger)
	formSvc := service.NewFormService(form.NewEngine(survey), sessions, tokens, submitter, logger)
	formSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		FormService:    formSvc,
		Tokens:         tokens,
		WSHub:          wsHub,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// Let pending submissions finish logging before exit
	formSvc.Wait()
	logger.Info("server exited")
	return err
}
