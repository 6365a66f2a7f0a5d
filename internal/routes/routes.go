package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/config"
	"github.com/example/omnilaze/internal/handlers"
	"github.com/example/omnilaze/internal/middleware"
	"github.com/example/omnilaze/internal/repository"
	"github.com/example/omnilaze/internal/services"
	"github.com/example/omnilaze/internal/utils"
)

// Register wires up all HTTP routes on top of the chosen stores. Extra
// verification options are applied after the config-derived ones.
func Register(app *fiber.App, cfg *config.Config, stores repository.Stores, log *zap.Logger, opts ...services.VerificationOption) {
	sms := services.NewSMSService(cfg.SMSURL, cfg.SMSTimeout, log.Named("sms"))
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenExpires)

	verifyOpts := append([]services.VerificationOption{services.WithDevMode(cfg.DevelopmentMode)}, opts...)
	codes := services.NewVerificationService(stores.Verifications, sms, log.Named("verification"), verifyOpts...)
	accounts := services.NewAccountService(codes, stores.Accounts, tokens, nil, log.Named("accounts"))
	orders := services.NewOrderService(stores.Orders, nil, cfg.StrictSubmit, log.Named("orders"))

	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, cfg.TelegramTimeout, log.Named("telegram"))
	if telegramService.Enabled() {
		orders.SetNotifier(telegramService)
	}

	authHandler := handlers.NewAuthHandler(codes, accounts, cfg.StoreTimeout)
	orderHandler := handlers.NewOrderHandler(orders, cfg.StoreTimeout)
	healthHandler := handlers.NewHealthHandler(cfg)

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", healthHandler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth routes
	app.Post("/send-verification-code", authHandler.SendCode)
	app.Post("/login-with-phone", authHandler.LoginWithPhone)
	app.Post("/verify-invite-code", authHandler.VerifyInvite)

	// Order routes; a bearer token is optional but must match the owner.
	orderRoutes := app.Group("", middleware.OptionalAuth(tokens))
	orderRoutes.Post("/create-order", orderHandler.CreateOrder)
	orderRoutes.Post("/submit-order", orderHandler.SubmitOrder)
	orderRoutes.Post("/order-feedback", orderHandler.OrderFeedback)
	orderRoutes.Get("/orders/:user_id", orderHandler.ListOrders)
	orderRoutes.Post("/delete-order", orderHandler.DeleteOrder)
}
