package middleware

import (
	"strings"

	"storefront-builder/internal/errors"

	"github.com/gin-gonic/gin"
)

// TokenVerifier returns the subject of a valid access token.
type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
}

type Auth struct {
	Verifier       TokenVerifier
	InternalSecret string
}

// AuthMiddleWare admits requests carrying a backend access token, either
// as a Bearer header or a ?token= query parameter.
func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		var token string
		tokenQuery := ctx.Query("token")

		if authHeader != "" {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if tokenQuery != "" {
			token = tokenQuery
		} else {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}

		userID, err := m.Verifier.VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		ctx.Set("user_id", userID)
		ctx.Next()
	}
}

// InternalAuthMiddleware guards operational endpoints with a shared secret.
func (m *Auth) InternalAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := strings.TrimPrefix(
			ctx.GetHeader("Authorization"),
			"Bearer ",
		)

		if token == "" || token != m.InternalSecret {
			ctx.Error(errors.Unauthorized("Unauthorized internal call!", nil))
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}
