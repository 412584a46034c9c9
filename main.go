package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/blind-dram/auth"
	"github.com/danielhkuo/blind-dram/cliparse"
	"github.com/danielhkuo/blind-dram/db"
	"github.com/danielhkuo/blind-dram/memstore"
	"github.com/danielhkuo/blind-dram/middleware"
	"github.com/danielhkuo/blind-dram/router"
	"github.com/danielhkuo/blind-dram/tasting"
)

func main() {
	var err error

	// Local .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Pick storage
	var repo tasting.Repository
	if cfg.DatabaseType == cliparse.DatabaseMemory {
		repo = memstore.New()
		slog.Warn("Using in-memory storage, tastings are lost on restart")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			cancel()
			slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		// Create schema (tables)
		err = db.CreateSchema(ctx, dbConn)
		cancel()
		if err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)

		repo = db.NewStore(dbConn, cfg.DatabaseType)
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL, nil)
	if err != nil {
		slog.Error("token issuer setup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Organizer tokens ready", "ttl", issuer.TTL())

	svc := tasting.NewService(repo, issuer, tasting.Options{
		PINCost: cfg.PINCost,
		Timeout: cfg.OpTimeout,
	})

	// Create router
	handler := middleware.CORS(cfg.CORSOrigins)(router.NewRouter(svc, cfg))

	// Create server
	server := http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
