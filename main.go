package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sethvargo/go-password/password"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinewatch/api"
	"cinewatch/config"
	"cinewatch/handlers"
	"cinewatch/internal/database"
	"cinewatch/services/history"
	"cinewatch/services/metadata"
	"cinewatch/services/player"
	"cinewatch/services/players"
	"cinewatch/services/sessions"
	"cinewatch/services/users"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("cinewatch starting...")

	configPath := os.Getenv("CINEWATCH_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("data", "settings.json")
	}

	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("logging to file: %s", settings.Log.File)
		}
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Generate a login PIN on first boot.
	settings.Server.PIN = strings.TrimSpace(settings.Server.PIN)
	if settings.Server.PIN == "" {
		pin, err := password.Generate(6, 6, 0, false, true)
		if err != nil {
			log.Fatalf("failed to generate PIN: %v", err)
		}
		settings.Server.PIN = pin
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist generated PIN: %v", err)
		}
		fmt.Println("generated a new 6-digit PIN; configure your frontend to use it.")
	}
	fmt.Printf("cinewatch PIN: %s\n", settings.Server.PIN)

	db, err := database.Open(settings.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Services
	metadataService := metadata.NewService(settings.Metadata.TMDBAPIKey, settings.Metadata.Language)
	historyService := history.NewService(db)
	historyService.SetMetadataService(metadataService)
	usersService, err := users.NewService(nil, filepath.Dir(settings.Database.Path))
	if err != nil {
		log.Fatalf("failed to init users service: %v", err)
	}
	sessionsService := sessions.NewService(0)
	playersService := players.NewService()
	registry := player.DefaultRegistry()

	// Handlers
	authHandler := handlers.NewAuthHandler(sessionsService, usersService, settings.Server.PIN)
	usersHandler := handlers.NewUsersHandler(usersService)
	historyHandler := handlers.NewHistoryHandler(historyService, settings.History.Enabled)
	playerEventsHandler := handlers.NewPlayerEventsHandler(registry, historyService, settings.History.Enabled)
	playersHandler := handlers.NewPlayersHandler(playersService, historyService)
	discoverHandler := handlers.NewDiscoverHandler(metadataService)
	imageHandler := handlers.NewImageHandler(settings.Cache.Directory)

	r := mux.NewRouter()
	api.Register(
		r,
		authHandler,
		usersHandler,
		historyHandler,
		playerEventsHandler,
		playersHandler,
		discoverHandler,
		imageHandler,
		sessionsService,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // Websocket streams stay open for the whole session
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("shutdown complete")
}
