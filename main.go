package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/policy-swipe/analysis"
	"github.com/danielhkuo/policy-swipe/catalog"
	"github.com/danielhkuo/policy-swipe/cliparse"
	"github.com/danielhkuo/policy-swipe/db"
	"github.com/danielhkuo/policy-swipe/middleware"
	"github.com/danielhkuo/policy-swipe/router"
)

func main() {
	var err error

	// A missing .env is fine; real env vars win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()
	if cfg.DatabaseType == "sqlite" {
		// SQLite allows one writer
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	ctx := context.Background()
	if cfg.SeedFile != "" {
		if err := seed(ctx, dbConn, cfg.SeedFile); err != nil {
			slog.Error("policy import failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	// Load the catalog once; it is immutable while serving
	items, err := db.LoadPolicies(ctx, dbConn)
	if err != nil {
		slog.Error("failed to load policies", "error", err)
		os.Exit(1)
	}
	store := catalog.New(items)
	if store.Len() == 0 {
		slog.Warn("policy catalog is empty; sessions will start with an empty deck")
	}
	slog.Info("Catalog loaded", "policies", store.Len(), "genres", len(store.Genres()))

	var requester analysis.Requester
	if cfg.AnalysisURL != "" {
		requester = analysis.NewHTTPClient(cfg.AnalysisURL)
	} else {
		slog.Info("remote analysis disabled (no ANALYSIS_URL)")
	}
	analysisSvc := analysis.NewService(requester, db.NewKV(dbConn))

	// Create router
	mux := router.NewRouter(dbConn, cfg, store, analysisSvc)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "like_direction", cfg.Swipe.LikeDirection)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Let in-flight analyses store their labels
	analysisSvc.Wait()
}

func seed(ctx context.Context, conn *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := db.SeedPolicies(ctx, conn, f)
	if err != nil {
		return err
	}
	slog.Info("Policies imported", "file", path, "inserted", n)
	return nil
}
