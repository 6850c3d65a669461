package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/bagshot/internal/database"
	"github.com/dukerupert/bagshot/internal/logging"
	"github.com/dukerupert/bagshot/internal/notify"
	"github.com/dukerupert/bagshot/internal/server"
	"github.com/dukerupert/bagshot/internal/upload"
)

func main() {
	logger := logging.Setup(os.Getenv("BAGSHOT_LOG_LEVEL"))

	port := os.Getenv("BAGSHOT_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("BAGSHOT_DB_PATH")
	if dbPath == "" {
		dbPath = "bagshot.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		Upload: upload.Config{
			Endpoint:      os.Getenv("BAGSHOT_S3_ENDPOINT"),
			Bucket:        os.Getenv("BAGSHOT_S3_BUCKET"),
			Region:        os.Getenv("BAGSHOT_S3_REGION"),
			AccessKey:     os.Getenv("BAGSHOT_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("BAGSHOT_S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("BAGSHOT_S3_PUBLIC_URL"),
		},
		Push: notify.Config{
			VAPIDPublicKey:  os.Getenv("BAGSHOT_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("BAGSHOT_VAPID_PRIVATE_KEY"),
		},
	}

	srv := server.New(db, cfg, logger)

	ctx := context.Background()
	srv.Scheduler().Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("bagshot running", "addr", "http://localhost:"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	srv.Scheduler().Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
