package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/studyhive/study_go_server/internal/pkg/jwt"
	"github.com/studyhive/study_go_server/internal/pkg/response"
)

const UserIDKey = "userID"

// bearerToken 从 Authorization 头提取 Bearer token
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		return "", false
	}
	return token, true
}

// Auth JWT 认证中间件，校验失败直接终止请求
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.AuthError(c, "请先登录")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(token, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth 可选认证。帖子和评论的读取接口对游客开放，
// 但登录用户需要带上身份以便返回 is_liked 等个性化字段。
// token 无效时按游客处理，不终止请求。
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(token, jwtSecret); err == nil {
				c.Set(UserIDKey, claims.UserID)
			}
		}
		c.Next()
	}
}

// GetUserID 从上下文获取当前用户 ID，未登录时返回 false
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
