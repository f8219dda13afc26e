package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/L33hy/cse340/internal/api"
	"github.com/L33hy/cse340/internal/auth"
	"github.com/L33hy/cse340/internal/config"
	"github.com/L33hy/cse340/internal/database"
	"github.com/L33hy/cse340/internal/logger"
	"github.com/L33hy/cse340/internal/maintenance"
	"github.com/L33hy/cse340/internal/services"
	"github.com/L33hy/cse340/internal/view"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Environment)

	// A missing signing secret fails login requests, not the process, but it
	// is worth shouting about at startup.
	if cfg.AccessTokenSecret == "" {
		log.Println("WARNING: ACCESS_TOKEN_SECRET is not set; logins will fail until it is configured")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up services
	accountService := services.NewAccountService(db)
	activityService := services.NewActivityService(db)

	// Set up the auth subsystem
	tokens := auth.NewTokenService(cfg.AccessTokenSecret)
	cookies := auth.NewCookieManager(cfg.Environment)

	// Set up the view collaborators
	renderer, err := view.NewTemplateRenderer()
	if err != nil {
		log.Fatalf("Failed to parse view templates: %v", err)
	}
	flash := view.NewFlash()

	// Set up and run the background activity pruner
	retention := time.Duration(cfg.ActivityRetention) * 24 * time.Hour
	pruner, err := maintenance.NewPruner(activityService, cfg.PruneSchedule, retention)
	if err != nil {
		log.Fatalf("Failed to set up activity pruner: %v", err)
	}
	go pruner.Run()

	// Set up router
	router := api.NewRouter(accountService, activityService, tokens, cookies,
		renderer, view.StaticNav, flash)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
