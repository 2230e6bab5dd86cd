package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/httpapi/handlers"
	"github.com/suPer8Hu/ai-companion/internal/httpapi/middleware"
)

type RouterOptions struct {
	JWTSecret   string
	CORSOrigins []string
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func NewRouter(h *handlers.Handler, opts RouterOptions, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	api := r.Group("/")
	api.Use(middleware.BearerSession(opts.JWTSecret))

	// auth
	api.POST("/logout", h.Logout)
	api.GET("/user/:sessionId", h.GetUser)
	api.POST("/user/memory", h.UpdateMemory)

	// guest profile
	api.GET("/profile/:sessionId", h.GetProfile)
	api.POST("/profile", h.UpdateProfile)

	// chat
	api.POST("/chat", h.SendChatMessage)
	api.POST("/upload", h.Upload)
	api.POST("/clear", h.Clear)
	api.GET("/history", h.History)
	api.GET("/history/:sessionId", h.History)

	// read models
	api.GET("/emotions", h.Emotions)
	api.GET("/emotions/:sessionId", h.Emotions)
	api.GET("/personality-evolution", h.PersonalityEvolution)
	api.GET("/personality-evolution/:sessionId", h.PersonalityEvolution)
	api.GET("/creative-projects", h.CreativeProjects)
	api.GET("/creative-projects/:sessionId", h.CreativeProjects)

	// conversations (account required)
	api.GET("/conversations/:sessionId", h.ListConversations)
	api.GET("/conversation/:sessionId/:conversationId", h.GetConversation)
	api.POST("/conversation/new", h.NewConversation)
	api.DELETE("/conversation/:sessionId/:conversationId", h.DeleteConversation)
	return r
}
