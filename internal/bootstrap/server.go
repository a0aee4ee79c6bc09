package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// ShutdownGrace bounds how long in-flight requests may finish after a
	// stop signal. Zero means 10s.
	ShutdownGrace time.Duration
}

// Serve runs the gin engine until SIGINT/SIGTERM, then drains in-flight
// requests before returning.
func Serve(router *gin.Engine, cfg ServerConfig, audit AuditLogger) error {
	grace := cfg.ShutdownGrace
	if grace <= 0 {
		grace = 10 * time.Second
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	log := zap.L().Named("http.server")

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case sig := <-quit:
		log.Info("stop signal received", zap.String("signal", sig.String()))

		// record the shutdown while the audit sink is still up
		audit.Log(context.Background(), AuditLog{
			Action:  "SERVER_SHUTDOWN",
			Message: "graceful shutdown started",
			Meta:    map[string]any{"signal": sig.String()},
		})

		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown incomplete", zap.Error(err))
			return err
		}
		log.Info("server drained")
		return nil
	}
}
