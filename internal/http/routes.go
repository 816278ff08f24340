package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/examify/auth-service/internal/domain"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rl := h.RateLimit()

	auth := r.Group("/auth")
	{
		auth.POST("/register", rl, h.Register)
		auth.POST("/login", rl, h.Login)
		auth.POST("/forgot-password", rl, h.ForgotPassword)
		auth.POST("/reset-password", rl, h.ResetPassword)

		auth.GET("/google", h.SocialRedirect("google"))
		auth.GET("/google/callback", h.SocialCallback("google"))
		auth.GET("/facebook", h.SocialRedirect("facebook"))
		auth.GET("/facebook/callback", h.SocialCallback("facebook"))

		auth.GET("/me", h.AuthRequired(), h.Me)
	}

	users := r.Group("/users", h.AuthRequired(), RequireRole(domain.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id/role", h.UpdateRole)
		users.PUT("/:id/toggle-status", h.ToggleStatus)
	}

	return r
}
