package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"reviewservice/internal/config"
	"reviewservice/internal/db"
	"reviewservice/internal/handlers"
	"reviewservice/internal/middleware"
	"reviewservice/internal/router"
	"reviewservice/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogger()

	// Initialize Database
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}

	listCache, err := services.NewListCache(cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create listing cache")
	}

	if err := handlers.RegisterValidators(); err != nil {
		logrus.WithError(err).Fatal("Failed to register validators")
	}

	// Initialize Gin
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(logrus.StandardLogger()), gin.Recovery())

	router.RegisterRoutes(r,
		handlers.NewReviewHandler(services.NewReviewService(gdb, listCache)),
		handlers.NewCommentHandler(services.NewCommentService(gdb, listCache)),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logrus.Infof("Review service starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server stopped")
		}
	}()

	// 等待中断信号，优雅关闭
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logrus.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown error")
	}
	if err := db.Close(gdb); err != nil {
		logrus.WithError(err).Error("Failed to close database")
	}
	logrus.Info("Server exited")
}
