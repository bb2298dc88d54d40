package router

import (
	"net/http"

	"votebox/internal/auth"
	"votebox/internal/handlers"
	"votebox/internal/ledger"
	"votebox/internal/middleware"
	"votebox/internal/response"
	"votebox/internal/token"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the /api/v1 surface. Auth routes are the only ones
// outside the token middleware.
func RegisterRoutes(r *gin.Engine, authService *auth.Service, l *ledger.Ledger, tokens *token.Service) {
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(l)
	votingHandler := handlers.NewVotingHandler(l)

	v1 := r.Group("/api/v1")

	// Public routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Protected routes
	authorized := v1.Group("/")
	authorized.Use(middleware.Authenticate(tokens))
	{
		authorized.GET("/users/me", userHandler.Me)
		authorized.POST("/votings", votingHandler.Create)
		authorized.GET("/votings/vote", votingHandler.Vote)

		admin := authorized.Group("/")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", userHandler.List)
			admin.DELETE("/users", userHandler.Delete)
			admin.GET("/votings", votingHandler.List)
			admin.DELETE("/votings", votingHandler.Delete)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Not Found"))
	})
}
