package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/voicecanvas/voicecanvas/app/controllers"
	"github.com/voicecanvas/voicecanvas/app/repository"
	"github.com/voicecanvas/voicecanvas/internal/pkg/billing"
	"github.com/voicecanvas/voicecanvas/internal/pkg/database"
	"github.com/voicecanvas/voicecanvas/internal/pkg/gate"
	"github.com/voicecanvas/voicecanvas/internal/pkg/mail"
	"github.com/voicecanvas/voicecanvas/internal/pkg/middleware"
	"github.com/voicecanvas/voicecanvas/internal/pkg/speech"
	"github.com/voicecanvas/voicecanvas/internal/pkg/token"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	factory := repository.GetGlobalFactory()
	users := factory.GetUserRepository()
	plans := factory.GetPlanRepository()
	tokens := factory.GetTokenRepository()

	// Billing: Stripe checkout, webhook reconciliation
	billing.InitStripe()
	catalog := billing.NewCatalogFromEnv()
	billingSvc := billing.NewServiceFromDB(database.GetDB())
	processor := billing.NewWebhookProcessor(billingSvc, catalog, billing.NewStripeGateway())
	webhookController := controllers.NewWebhookControllerFromEnv(processor)
	api.Post("/webhook/stripe", webhookController.HandleStripeWebhook)

	checkoutController := controllers.NewCheckoutController(catalog)
	api.Post("/checkout/session", checkoutController.HandleCreateSession)

	// Speech synthesis behind the per-identity concurrency gate
	polly, err := speech.NewPollySynthesizer()
	if err != nil {
		log.Fatalf("[Router] Polly setup failed: %v", err)
	}
	speechSvc := speech.NewService(polly, speech.NewMinimaxSynthesizer(), speech.NewRedisAudioCache())
	slots := gate.New(gate.NewSubscriptionLimitResolver(plans, gate.DefaultLimits()))
	speechController := controllers.NewSpeechController(speechSvc, slots, plans)
	api.Post("/speech", speechController.HandleSynthesize)

	// Plan/quota read
	planController := controllers.NewUserPlanController(plans)
	api.Get("/user/plan", middleware.RequireAuth, planController.HandleGetPlan)

	// Password reset and email verification
	tokenSvc := token.NewService(users, tokens, mail.NewMailerFromEnv())
	authController := controllers.NewAuthAPIController(tokenSvc)
	auth := api.Group("/auth")
	auth.Post("/forgot-password", authController.HandleForgotPassword)
	auth.Post("/reset-password", authController.HandleResetPassword)
	auth.Get("/verify-email", authController.HandleVerifyEmail)
	auth.Post("/resend-verification", authController.HandleResendVerification)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
