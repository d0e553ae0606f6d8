package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"khidmaBack/internal/config"
	"khidmaBack/internal/migrations"
)

const shutdownTimeout = 15 * time.Second

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	runMigrations := flag.Bool("migrate", false, "apply migrations before serving")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		logger.Infof("no .env file loaded: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	db, err := openDB(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if *runMigrations || *migrateOnly {
		version, err := migrations.Up(db.DB)
		if err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		logger.Infof("database schema at version %d", version)
		if *migrateOnly {
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("initialize: %v", err)
	}
	defer app.close()

	jobs, err := app.startJobs(cfg)
	if err != nil {
		logger.Fatalf("start jobs: %v", err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept-Language"},
	})

	errorWriter := logger.WithField("component", "http").WriterLevel(logrus.ErrorLevel)
	defer errorWriter.Close()

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		ErrorLog:     log.New(errorWriter, "", 0),
		Handler:      addSecurityHeaders(c.Handler(app.routes())),
		IdleTimeout:  cfg.Server.IdleTimeout,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("starting server on %s", cfg.Server.Address)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server: %v", err)
		}
	case <-ctx.Done():
		logger.Infof("shutting down")
	}

	<-jobs.Stop().Done()
	app.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	app.notifier.Wait()
}

// openDB connects to MySQL with parseTime and multiStatements forced on.
func openDB(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	mcfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	mcfg.ParseTime = true
	mcfg.MultiStatements = true
	mcfg.ClientFoundRows = true

	db, err := sqlx.Open("mysql", mcfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
