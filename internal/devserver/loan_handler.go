package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/pkg/response"
	"ukonnect/internal/repository"
)

func (s *Server) listEquipment(c *gin.Context) {
	items, err := s.equipment.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal memuat data alat")
		return
	}
	c.JSON(http.StatusOK, mapSlice(items, equipmentDTO))
}

func (s *Server) listLoans(c *gin.Context) {
	items, err := s.loans.ListByUser(c.Request.Context(), currentUser(c))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal memuat data peminjaman")
		return
	}
	c.JSON(http.StatusOK, mapSlice(items, loanDTO))
}

func (s *Server) createLoan(c *gin.Context) {
	var req loanCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Data peminjaman tidak lengkap")
		return
	}
	if req.Quantity < 1 {
		response.Error(c, http.StatusBadRequest, "INVALID_QUANTITY", "Jumlah tidak valid")
		return
	}
	if req.StartAt == 0 || req.EndAt == 0 || req.EndAt < req.StartAt {
		response.Error(c, http.StatusBadRequest, "INVALID_PERIOD", "Tanggal selesai tidak boleh sebelum tanggal mulai")
		return
	}

	userID := currentUser(c)
	loan, err := s.loans.Create(c.Request.Context(), repository.CreateLoanParams{
		UserID:      userID,
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		StartAt:     time.UnixMilli(req.StartAt),
		EndAt:       time.UnixMilli(req.EndAt),
		Now:         s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Error(c, http.StatusNotFound, "EQUIPMENT_NOT_FOUND", "Alat tidak ditemukan")
		case errors.Is(err, repository.ErrInsufficientStock):
			response.Error(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Stok tidak mencukupi")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal membuat peminjaman")
		}
		return
	}

	s.log.Info("loan created",
		zap.Int64("user_id", userID),
		zap.String("loan_id", loan.ID),
		zap.Int("qty", loan.Quantity),
	)
	s.notify(userID, "Peminjaman berhasil", fmt.Sprintf("%d x %s berhasil dipinjam.", loan.Quantity, loan.EquipmentName))
	c.JSON(http.StatusCreated, loanDTO(*loan))
}

func (s *Server) returnLoan(c *gin.Context) {
	var req loanReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		response.Error(c, http.StatusBadRequest, "INVALID_QUANTITY", "Jumlah tidak valid")
		return
	}

	userID := currentUser(c)
	loan, err := s.loans.Return(c.Request.Context(), userID, c.Param("id"), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Data peminjaman tidak ditemukan")
		case errors.Is(err, repository.ErrLoanNotActive):
			response.Error(c, http.StatusConflict, "LOAN_NOT_ACTIVE", "Peminjaman sudah dikembalikan")
		case errors.Is(err, repository.ErrReturnExceeds):
			response.Error(c, http.StatusConflict, "RETURN_EXCEEDS", "Jumlah melebihi alat yang dipinjam")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal mengembalikan alat")
		}
		return
	}

	s.notify(userID, "Pengembalian tercatat", fmt.Sprintf("%d x %s dikembalikan.", req.Quantity, loan.EquipmentName))
	c.JSON(http.StatusOK, api.LoanReturnResponse{
		Message:   "Pengembalian berhasil",
		ID:        loan.ID,
		Remaining: loan.Quantity,
		Status:    string(loan.Status),
	})
}

func (s *Server) deleteLoan(c *gin.Context) {
	if err := s.loans.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Data peminjaman tidak ditemukan")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menghapus peminjaman")
		return
	}
	response.Message(c, http.StatusOK, "Peminjaman dihapus")
}

func (s *Server) notify(userID int64, title, body string) {
	ev := api.PushEvent{Type: api.PushEventNotification, Title: title, Body: body}
	if !s.hub.SendToUser(userID, ev) {
		s.log.Debug("push skipped, user offline", zap.Int64("user_id", userID))
	}
}
