package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ukonnect/internal/domain"
	"ukonnect/internal/middleware"
	"ukonnect/internal/pkg/response"
	"ukonnect/internal/repository"
)

const msgBadCredentials = "Username atau password salah"

func (s *Server) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Username dan password wajib diisi")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal mendaftarkan pengguna")
		return
	}

	u := &domain.User{Username: strings.TrimSpace(req.Username), PasswordHash: string(hash)}
	if err := s.users.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "Username sudah digunakan")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal mendaftarkan pengguna")
		return
	}

	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registrasi berhasil",
		"userId":  u.ID,
	})
}

func (s *Server) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Username dan password wajib diisi")
		return
	}

	u, err := s.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", msgBadCredentials)
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal login")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", msgBadCredentials)
		return
	}

	token, err := s.jwt.GenerateToken(u.ID, u.Username)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login berhasil",
		"user":    u.Username,
		"userId":  u.ID,
		"token":   token,
	})
}

// updatePushToken stores a device token. Anonymous calls are accepted so a
// token issued before login is not lost.
func (s *Server) updatePushToken(c *gin.Context) {
	var req pushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Token wajib diisi")
		return
	}

	var owner *int64
	if _, ok := c.Get(middleware.CtxUserID); ok {
		id := currentUser(c)
		owner = &id
	}
	if err := s.pushTokens.Save(c.Request.Context(), strings.TrimSpace(req.Token), owner); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menyimpan token")
		return
	}
	response.Message(c, http.StatusOK, "Token tersimpan")
}
