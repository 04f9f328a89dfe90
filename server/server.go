// Package server wires the HTTP transport: routing, CORS, request
// validation and error-to-status translation.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adampisula/musicdl-server/cache"
	"github.com/adampisula/musicdl-server/config"
	"github.com/adampisula/musicdl-server/db"
	"github.com/adampisula/musicdl-server/downloader"
	"github.com/adampisula/musicdl-server/logger"
	"github.com/adampisula/musicdl-server/provider"
	"github.com/adampisula/musicdl-server/repository"
	"github.com/adampisula/musicdl-server/service"
	"github.com/adampisula/musicdl-server/storage"
)

// Start initializes dependencies and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
	defer logger.Sync()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.CloseGormDB()

	if err := repository.AutoMigrate(db.GormDB); err != nil {
		logger.L().Fatal("Failed to migrate database schema", zap.Error(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	fileStore, err := storage.NewMinioStore(cfg)
	if err != nil {
		logger.L().Fatal("Failed to initialize MinIO", zap.Error(err))
	}

	ytdlp := downloader.New(cfg.YtDlpPath, cfg.TempPath)
	if !ytdlp.IsAvailable() {
		logger.Warn("yt-dlp executable not found, downloads will fail",
			zap.String("path", cfg.YtDlpPath))
	}

	spotify := provider.NewSpotifyProvider(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	youtube := provider.NewYouTubeProvider(cfg.YoutubeAPIKey, cfg.YoutubeRegionCode, ytdlp)
	soundcloud := provider.NewSoundCloudProvider()

	trackRepo := repository.NewMySQLTrackRepository(db.GormDB)
	metaCache := cache.NewMetadataCache(db.RedisClient)

	trackService := service.NewTrackService(spotify, youtube, soundcloud, trackRepo, fileStore, metaCache)
	trackHandler := NewTrackHandler(trackService)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/track/action", trackHandler.DetermineAction).Methods(http.MethodGet)
	router.HandleFunc("/track/metadata", trackHandler.GetMetadata).Methods(http.MethodGet)
	router.HandleFunc("/track/alternatives", trackHandler.GetAlternatives).Methods(http.MethodGet)
	router.HandleFunc("/track/download-url", trackHandler.GetDownloadURL).Methods(http.MethodGet)
	router.HandleFunc("/track/fetch", trackHandler.Fetch).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // fetch runs a full download/upload cycle
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
