package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieName 是保存会话 token 的 httpOnly cookie。
const CookieName = "userToken"

// BearerToken 从 cookie 或 Authorization 头提取 token，找不到返回空串。
func BearerToken(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	authz := c.GetHeader("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}

// Middleware 校验 bearer token 并把用户 id 和 token 写进请求上下文，
// 失败时直接 401 短路，后续 handler 不会执行。
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, ok := tokens.Validate(c.Request.Context(), token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("userID", userID)
		c.Set("token", token)
		c.Next()
	}
}

// GetUserID 读取中间件写入的当前用户 id。
func GetUserID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if id, ok2 := v.(string); ok2 {
			return id
		}
	}
	return ""
}

// GetToken 读取中间件写入的当前请求 token。
func GetToken(c *gin.Context) string {
	if v, ok := c.Get("token"); ok {
		if t, ok2 := v.(string); ok2 {
			return t
		}
	}
	return ""
}
