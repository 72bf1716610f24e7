package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nutrition-tracker/config"
	"nutrition-tracker/controllers"
	"nutrition-tracker/repositories"
	"nutrition-tracker/routes"
	"nutrition-tracker/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gorm.io/gorm"
)

const (
	upstreamClientTimeout = 30 * time.Second
	shutdownTimeout       = 10 * time.Second
)

type server struct {
	http *http.Server
}

// newServer wires repositories, services and controllers into an HTTP server.
func newServer(ctx context.Context, cfg *config.Config, db *gorm.DB) (*server, error) {
	foods := repositories.NewFoodRepository(db)
	meals := repositories.NewMealRepository(db)
	users := repositories.NewUserRepository(db)

	client := &http.Client{Timeout: upstreamClientTimeout}
	hub := services.NewRealtimeHub()
	authSvc := services.NewAuthService(users, cfg.JWTSecret)

	off := services.NewOpenFoodFactsService(cfg.Lookup.OpenFoodFactsURL, client)
	usda := services.NewUSDAService(cfg.Lookup.USDAURL, cfg.Lookup.USDAAPIKey, client)

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Images.AWSRegion))
		if err != nil {
			return aws.Config{}, fmt.Errorf("unable to load AWS config: %w", err)
		}
		awsCfg = &c
		return c, nil
	}

	var recognizer services.FoodRecognizer
	switch cfg.Vision.Provider {
	case "rekognition":
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		recognizer = services.NewRekognitionServiceFromConfig(c)
	default:
		recognizer = services.NewVisionService(cfg.Vision.URL, cfg.Vision.APIKey, cfg.Vision.Model, &http.Client{Timeout: 60 * time.Second})
	}

	var store services.ImageStore = services.NewLocalImageStore(cfg.Images.UploadDir)
	if cfg.Images.Bucket != "" {
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		store = services.NewS3ImageStore(s3.NewFromConfig(c), cfg.Images.Bucket, cfg.Images.PublicURL)
	}

	h := routes.Handlers{
		Auth:      controllers.NewAuthController(authSvc),
		Barcode:   controllers.NewBarcodeController(services.NewBarcodeService(foods, off, cfg.Lookup.Timeout)),
		Food:      controllers.NewFoodController(services.NewFoodService(foods, usda)),
		Meal:      controllers.NewMealController(services.NewMealService(meals, foods, users, hub)),
		User:      controllers.NewUserController(services.NewUserService(users)),
		Image:     controllers.NewImageController(recognizer, store),
		Realtime:  controllers.NewRealtimeController(hub, cfg.AllowedOrigins()),
		Health:    controllers.NewHealthController(healthChecks(db, store)),
		Analytics: controllers.NewAnalyticsController(services.NewAnalyticsService(meals, users)),
	}

	return &server{http: &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.SetupRouter(h, authSvc, cfg.AllowedOrigins()),
		ReadHeaderTimeout: 10 * time.Second,
	}}, nil
}

// healthChecks pings the database and, when it supports it, the image store.
func healthChecks(db *gorm.DB, store services.ImageStore) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{"database": controllers.DBPinger(db)}
	if p, ok := store.(controllers.Pinger); ok {
		checks["images"] = p
	}
	return checks
}

// run serves until ctx is cancelled, then shuts down gracefully.
func (s *server) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
