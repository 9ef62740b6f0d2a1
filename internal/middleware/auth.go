package middleware

import (
	"context"
	"net/http"
	"strings"

	"Lee_Microblog/internal/pkg"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	APIKeyHeader     = "api-key"
)

// Authenticator api-key 或 bearer token -> 用户 id
type Authenticator interface {
	Resolve(ctx context.Context, apiKey string) (uint64, error)
	ResolveToken(token string) (uint64, error)
}

// AuthMiddleware 优先 api-key 头，其次 Authorization: Bearer
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			uid uint64
			err error
		)
		if key := c.GetHeader(APIKeyHeader); key != "" {
			uid, err = auth.Resolve(c.Request.Context(), key)
		} else if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				abortUnauthorized(c, "invalid authorization format")
				return
			}
			uid, err = auth.ResolveToken(strings.TrimSpace(parts[1]))
		} else {
			abortUnauthorized(c, "API key is required")
			return
		}

		if err != nil {
			switch pkg.KindOf(err) {
			case pkg.KindNotFound, pkg.KindUnauthorized:
				abortUnauthorized(c, err.Error())
			default:
				c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"result":        false,
					"error_type":    pkg.KindInternal.String(),
					"error_message": "internal server error",
				})
			}
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, uid)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"result":        false,
		"error_type":    pkg.KindUnauthorized.String(),
		"error_message": msg,
	})
}

// UserID 取出认证后的用户 id，未认证返回 0
func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok2 := v.(uint64); ok2 {
			return id
		}
	}
	return 0
}
