package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "procurement-tracker/internal/adapters/web"
	"procurement-tracker/internal/app"
	"procurement-tracker/internal/core"
	"procurement-tracker/internal/db"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	sequenceService := core.NewSequenceService(pool)
	planService := core.NewPlanService(pool, sequenceService)
	requestService := core.NewPurchaseRequestService(pool, sequenceService)
	fundService := core.NewFundService(pool)
	reportingService := core.NewReportingService(pool)
	userService := core.NewUserService(pool)

	svc := app.NewAppService(userService, planService, requestService, fundService, reportingService)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
