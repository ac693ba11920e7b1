package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/contaflow/backoffice/cmd/docs"
	"github.com/contaflow/backoffice/internal/core/ports"
	"github.com/contaflow/backoffice/internal/middleware"
	"github.com/contaflow/backoffice/internal/platform/config"
	"github.com/contaflow/backoffice/internal/utils"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *ports.ServiceContainer,
) {
	registerCustomValidators()

	r.GET("/", GetHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public authentication routes
	registerAuthRoutes(r, cfg, services)

	// Provider-facing webhook, authenticated by verify token instead of JWT
	registerWhatsAppWebhookRoutes(r, cfg, services.Conversation)

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *ports.ServiceContainer,
) {
	// Machine tokens are tried first; JWT handles everything else. Both
	// set the user id that DeriveActor resolves into role and sector.
	v1 := r.Group("/api/v1",
		middleware.APITokenAuth(services.APIToken),
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.DeriveActor(services.Auth),
	)

	registerUserRoutes(v1, services.User)
	registerClientRoutes(v1, services.Client)
	registerChatRoutes(v1, services.Chat)
	registerDocumentRoutes(v1, services.Document)
	registerTaskRoutes(v1, services.Task)
	registerWhatsAppRoutes(v1, cfg, services.Conversation)
	registerUnknownContactRoutes(v1, services.UnknownContact)
	registerReportRoutes(v1, services.Reporting)
	registerAPITokenRoutes(v1, services.APIToken)
}

// registerCustomValidators adds the cnpj binding tag used by client
// payloads.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
			return utils.ValidCNPJ(fl.Field().String())
		})
	}
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
