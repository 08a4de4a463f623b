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

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/internal/analytics"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/internal/cars"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/internal/patients"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/internal/scheduling"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/config"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/database"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/httpx"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/monitoring"
)

const serviceName = "lab-scheduler"

func main() {
	// Load .env if present, real environment wins
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel)
	logger.Infof("Starting %s", serviceName)

	db, err := database.NewConnection(&cfg.Mongo, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to document store: %v", err)
	}

	if err := db.EnsureIndexes(context.Background()); err != nil {
		logger.Fatalf("Failed to ensure indexes: %v", err)
	}

	// Repositories
	patientRepo := patients.NewRepository(db, logger)
	appointmentRepo := scheduling.NewRepository(db, logger)
	carRepo := cars.NewRepository(db, logger)
	analyticsRepo := analytics.NewRepository(db, logger)

	// Services
	patientService := patients.NewService(patientRepo, logger, cfg.API)
	carService := cars.NewService(carRepo, logger, cfg.API)
	schedulingService := scheduling.NewService(appointmentRepo, patientRepo, carRepo, logger, cfg.API)
	analyticsService := analytics.NewService(analyticsRepo, logger)

	// Router
	router := mux.NewRouter()
	router.Use(monitoring.Middleware(logger))

	patientService.SetupRoutes(router)
	carService.SetupRoutes(router)
	schedulingService.SetupRoutes(router)
	analyticsService.SetupRoutes(router)

	router.HandleFunc(cfg.Monitoring.HealthPath, monitoring.HealthHandler(logger, db.Health)).Methods("GET")
	if cfg.Monitoring.Enabled {
		router.Handle(cfg.Monitoring.MetricsPath, monitoring.Handler()).Methods("GET")
	}
	router.HandleFunc("/", infoHandler(logger)).Methods("GET")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		logger.Errorf("Error closing store connection: %v", err)
	}

	logger.Info("Stopped")
}

func infoHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, log, http.StatusOK, map[string]string{
			"service": serviceName,
			"version": "2.0.0",
			"docs":    "/api",
		})
	}
}
