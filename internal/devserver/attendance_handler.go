package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ukonnect/internal/domain"
	"ukonnect/internal/pkg/response"
	"ukonnect/internal/repository"
)

func (s *Server) listAttendance(c *gin.Context) {
	items, err := s.attendance.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal memuat riwayat absensi")
		return
	}
	c.JSON(http.StatusOK, mapSlice(items, attendanceDTO))
}

// upsertAttendance is idempotent on the client-generated id.
func (s *Server) upsertAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Data absensi tidak lengkap")
		return
	}

	rec := domain.AttendanceRecord{
		ID:      req.ID,
		Date:    req.Date,
		Time:    req.Time,
		Type:    domain.AttendanceType(req.Type),
		Payload: req.Payload,
		Status:  req.Status,
	}
	if rec.Type == "" {
		rec.Type = domain.ClassifyAttendance(req.Payload)
	}
	if err := s.attendance.Upsert(c.Request.Context(), currentUser(c), rec); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menyimpan absensi")
		return
	}
	response.Message(c, http.StatusOK, "Absensi tersimpan")
}

func (s *Server) deleteAttendance(c *gin.Context) {
	if err := s.attendance.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Data absensi tidak ditemukan")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menghapus absensi")
		return
	}
	response.Message(c, http.StatusOK, "Absensi dihapus")
}
