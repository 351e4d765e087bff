package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/config"
	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/handlers"
	"github.com/GeniusB-ui/mymoney-v1.0.0/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.CleanExpiredSessions(); err != nil {
		logger.Warn("Failed to clean expired sessions", "error", err)
	}

	h := handlers.NewHandlers(db, cfg.TemplateDir, cfg.SecureCookie, cfg.SessionDuration)
	mux := setupRouter(h, cfg.StaticDir)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting mymoney server", "port", cfg.Port, "db", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// setupRouter wires routes to handlers. Protected routes go through the
// auth middleware; login, register and logout do not.
func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterForm)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.Handle("GET /index", h.AuthMiddleware(http.HandlerFunc(h.Index)))
	mux.Handle("GET /add", h.AuthMiddleware(http.HandlerFunc(h.AddForm)))
	mux.Handle("POST /add", h.AuthMiddleware(http.HandlerFunc(h.Add)))
	mux.Handle("GET /list", h.AuthMiddleware(http.HandlerFunc(h.List)))
	mux.Handle("GET /edit/{id}", h.AuthMiddleware(http.HandlerFunc(h.EditForm)))
	mux.Handle("POST /edit/{id}", h.AuthMiddleware(http.HandlerFunc(h.Edit)))
	mux.Handle("GET /delete/{id}", h.AuthMiddleware(http.HandlerFunc(h.Delete)))

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	return mux
}
