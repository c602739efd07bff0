package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/the-inv-riya/pixify/internal/adapter/gateway"
	"github.com/the-inv-riya/pixify/internal/adapter/handler"
	"github.com/the-inv-riya/pixify/internal/adapter/middleware"
	"github.com/the-inv-riya/pixify/internal/adapter/storage"
	"github.com/the-inv-riya/pixify/internal/core/billing"
	"github.com/the-inv-riya/pixify/internal/core/config"
	"github.com/the-inv-riya/pixify/internal/core/imagegen"
	"github.com/the-inv-riya/pixify/internal/core/security"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	dbPool, err := storage.ConnectDB(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	userRepo := storage.NewUserRepository(dbPool)
	transactionRepo := storage.NewTransactionRepository(dbPool)

	tokens := security.NewTokenIssuer(cfg.JWTSecret, 30*24*time.Hour)
	stripeGateway := gateway.NewStripeGateway(cfg.StripeSecretKey, cfg.FrontendURL)
	billingService := billing.NewService(userRepo, transactionRepo, stripeGateway)
	images := imagegen.NewClient(cfg.ClipDropAPIKey)

	userHandler := &handler.UserHandler{Store: userRepo, Tokens: tokens}
	paymentHandler := &handler.PaymentHandler{Billing: billingService}
	imageHandler := &handler.ImageHandler{Store: userRepo, Images: images}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Static("/", "./public")

	api := app.Group("/api")

	user := api.Group("/user")
	user.Post("/register", userHandler.Register)
	user.Post("/login", userHandler.Login)
	user.Get("/credits", middleware.Protected(tokens), userHandler.Credits)
	user.Post("/create-payment", middleware.Protected(tokens), paymentHandler.CreatePayment)
	user.Post("/verify-payment", paymentHandler.VerifyPayment)

	image := api.Group("/image")
	image.Post("/generate-image", middleware.Protected(tokens), imageHandler.GenerateImage)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("Server exited")
}
