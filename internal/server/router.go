package server

import (
	"net/http"
	"time"

	"github.com/Yashraval366/Chat-App/internal/auth"
	"github.com/Yashraval366/Chat-App/internal/config"
	"github.com/Yashraval366/Chat-App/internal/metrics"
	"github.com/Yashraval366/Chat-App/internal/mw"
	"github.com/Yashraval366/Chat-App/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// SetupRouter 统一初始化 Gin 中间件、REST API 以及 WebSocket 端点。
// 注册、登录和联合登录之外的所有业务接口都在 token 校验之后。
func SetupRouter(cfg config.Config, h *Handler, tokens *auth.TokenService, reg *ws.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env, cfg.BaseURL))
	// 控制单个 IP+路由的速率，挡住凭证爆破和刷接口
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/googleAuth", h.GoogleAuth)

	// 需要 Bearer Token 的业务接口
	authed := r.Group("")
	authed.Use(auth.Middleware(tokens))

	authed.GET("/validUser", h.ValidUser)
	authed.POST("/logout", h.Logout)
	authed.GET("/searchUsers", h.SearchUsers)
	authed.GET("/users/:id", h.GetUser)
	authed.PATCH("/users/:id", h.UpdateUser)

	api := authed.Group("/api")
	api.POST("/chat", h.AccessChat)
	api.GET("/chat", h.ListChats)
	api.GET("/chat/online/:chatId", ws.OnlineCount(reg))
	api.POST("/chat/group", h.CreateGroup)
	api.PATCH("/chat/group/rename", h.RenameGroup)
	api.PUT("/chat/groupAdd", h.AddToGroup)
	api.PUT("/chat/groupRemove", h.RemoveFromGroup)
	api.POST("/message", h.SendMessage)
	api.GET("/message/:chatId", h.ChatHistory)

	r.GET("/ws", ws.Serve(reg, tokens))

	return r
}
