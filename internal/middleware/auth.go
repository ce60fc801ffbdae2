package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ukonnect/internal/pkg/jwt"
	"ukonnect/internal/pkg/response"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// JWTAuth requires a valid bearer token. Websocket clients that cannot set
// headers may pass ?token= instead.
func JWTAuth(svc *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, code := bearer(c)
		if raw == "" {
			response.AbortError(c, http.StatusUnauthorized, code, "Silakan login terlebih dahulu")
			return
		}
		if !authenticate(c, svc, raw) {
			return
		}
		c.Next()
	}
}

// OptionalJWT sets the user when a token is present and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func OptionalJWT(svc *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, code := bearer(c)
		if raw == "" {
			if code == "INVALID_AUTH_FORMAT" {
				response.AbortError(c, http.StatusUnauthorized, code, "Silakan login terlebih dahulu")
				return
			}
			c.Next()
			return
		}
		if !authenticate(c, svc, raw) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, svc *jwt.Service, raw string) bool {
	claims, err := svc.ValidateToken(raw)
	if err != nil {
		response.AbortError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token tidak valid atau kedaluwarsa")
		return false
	}
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUsername, claims.Username)
	return true
}

// bearer returns the token, or "" with the reason code.
func bearer(c *gin.Context) (string, string) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h == "" {
		if q := strings.TrimSpace(c.Query("token")); q != "" {
			return q, ""
		}
		return "", "AUTH_HEADER_MISSING"
	}
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", "INVALID_AUTH_FORMAT"
	}
	return strings.TrimSpace(token), ""
}
