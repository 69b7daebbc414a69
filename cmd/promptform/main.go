package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promptform/promptform/internal/config"
	"github.com/promptform/promptform/internal/db"
	"github.com/promptform/promptform/internal/gateway"
	"github.com/promptform/promptform/internal/handlers"
	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/middleware"
	"github.com/promptform/promptform/internal/repos"
	"github.com/promptform/promptform/internal/server"
	"github.com/promptform/promptform/internal/services"
	"github.com/promptform/promptform/pkg/render"
	"github.com/promptform/promptform/pkg/renderers/vanilla"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.New(cfg.Database, log)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("database migration failed", "error", err)
	}
	handle := dbService.DB()

	// Repos
	formRepo := repos.NewFormRepo(handle, log)
	submissionRepo := repos.NewSubmissionRepo(handle, log)

	// Gateway
	gatewayClient, err := gateway.NewClient(cfg.Gateway, log)
	if err != nil {
		log.Fatal("gateway init failed", "error", err)
	}

	// Services
	formService := services.NewFormService(formRepo, submissionRepo, log)
	submissionService := services.NewSubmissionService(formRepo, submissionRepo, log)
	generationService := services.NewGenerationService(gatewayClient, log)

	// Renderers for the public form link
	vanillaRenderer, err := vanilla.New()
	if err != nil {
		log.Fatal("renderer init failed", "error", err)
	}
	registry := render.NewRegistry()
	registry.MustRegister(vanillaRenderer)

	htmlRenderer, err := registry.Get("vanilla")
	if err != nil {
		log.Fatal("renderer lookup failed", "error", err)
	}

	// Handlers + router
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		AuthMiddleware:    middleware.NewAuthMiddleware(cfg.Auth.JWTSecret, log),
		GenerationHandler: handlers.NewGenerationHandler(log, generationService),
		FormHandler:       handlers.NewFormHandler(log, formService),
		PublicFormHandler: handlers.NewPublicFormHandler(log, formService, submissionService, htmlRenderer),
	})

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatal("server exited", "error", err)
	}
}
