package devserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ukonnect/internal/domain"
	"ukonnect/internal/pkg/response"
	"ukonnect/internal/repository"
)

func (s *Server) listActivities(c *gin.Context) {
	items, err := s.activities.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal memuat aktivitas")
		return
	}
	c.JSON(http.StatusOK, mapSlice(items, activityDTO))
}

func (s *Server) createActivity(c *gin.Context) {
	a, ok := bindActivity(c)
	if !ok {
		return
	}
	out, err := s.activities.Create(c.Request.Context(), currentUser(c), a)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menyimpan aktivitas")
		return
	}
	c.JSON(http.StatusCreated, activityDTO(*out))
}

func (s *Server) updateActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "ID aktivitas tidak valid")
		return
	}
	a, ok := bindActivity(c)
	if !ok {
		return
	}
	a.ID = id

	out, err := s.activities.Update(c.Request.Context(), currentUser(c), a)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Aktivitas tidak ditemukan")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menyimpan aktivitas")
		return
	}
	c.JSON(http.StatusOK, activityDTO(*out))
}

func (s *Server) deleteActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "ID aktivitas tidak valid")
		return
	}
	if err := s.activities.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Aktivitas tidak ditemukan")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menghapus aktivitas")
		return
	}
	response.Message(c, http.StatusOK, "Aktivitas dihapus")
}

func bindActivity(c *gin.Context) (domain.Activity, bool) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Judul dan waktu aktivitas wajib diisi")
		return domain.Activity{}, false
	}
	if req.EndTimeMillis < req.StartTimeMillis {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Waktu selesai tidak boleh sebelum waktu mulai")
		return domain.Activity{}, false
	}
	return domain.Activity{
		Title:  strings.TrimSpace(req.Title),
		Start:  time.UnixMilli(req.StartTimeMillis),
		End:    time.UnixMilli(req.EndTimeMillis),
		Status: domain.ParseActivityStatus(req.Status),
	}, true
}
