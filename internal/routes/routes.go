package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/example/tribuna/internal/config"
	"github.com/example/tribuna/internal/handlers"
	"github.com/example/tribuna/internal/middleware"
	"github.com/example/tribuna/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	smsService := services.NewSMSService(cfg.SMSAPIURL, cfg.SMSAPIKey, cfg.SMSSender)
	activationService := services.NewActivationService(db, cfg, smsService)
	tokenService := services.NewTokenService(db, cfg)
	discountService := services.NewDiscountService(db)
	imageService := services.NewImageService(cfg.LogoMaxDimension)

	activationHandler := handlers.NewActivationHandler(activationService, tokenService)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	profileHandler := handlers.NewProfileHandler(db, cfg, tokenService)
	discountHandler := handlers.NewDiscountHandler(discountService)
	companyHandler := handlers.NewCompanyHandler(db, cfg, imageService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Activation (OTP) routes, rate limited per client.
	activations := api.Group("/activations", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	activations.Post("/", activationHandler.Create)
	activations.Post("/:id/activate", activationHandler.Activate)
	activations.Get("/:id/resend", activationHandler.Resend)

	// Token routes.
	api.Post("/token", tokenHandler.Obtain)
	api.Post("/token/refresh", tokenHandler.Refresh)

	// Public discount lookup.
	api.Get("/users/info/:code", discountHandler.Lookup)
	api.Get("/qr/:code", profileHandler.QRImage)

	// Profile routes.
	profile := api.Group("/profile", middleware.AuthMiddleware(tokenService))
	profile.Post("/register", profileHandler.Register)
	profile.Get("/", profileHandler.Get)
	profile.Put("/", profileHandler.Update)
	profile.Get("/qr", profileHandler.QR)
	profile.Get("/logout", profileHandler.Logout)

	// Company administration, staff only.
	admin := api.Group("", middleware.AuthMiddleware(tokenService), middleware.RequireStaff())

	companies := admin.Group("/companies")
	companies.Get("/", companyHandler.ListCompanies)
	companies.Post("/", companyHandler.CreateCompany)
	companies.Get("/:id", companyHandler.GetCompany)
	companies.Put("/:id", companyHandler.UpdateCompany)
	companies.Delete("/:id", companyHandler.DeleteCompany)
	companies.Post("/:id/logo", companyHandler.UploadLogo)
	companies.Post("/:id/discounts", companyHandler.CreateDiscount)
	companies.Post("/:id/employees", companyHandler.LinkEmployee)

	admin.Put("/discounts/:id", companyHandler.UpdateDiscount)
	admin.Delete("/discounts/:id", companyHandler.DeleteDiscount)
	admin.Delete("/employees/:id", companyHandler.UnlinkEmployee)

	admin.Get("/fan-discounts", companyHandler.ListFanDiscounts)
	admin.Post("/fan-discounts", companyHandler.CreateFanDiscount)
	admin.Delete("/fan-discounts/:id", companyHandler.DeleteFanDiscount)
}
