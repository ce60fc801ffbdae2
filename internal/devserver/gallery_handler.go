package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ukonnect/internal/pkg/response"
	"ukonnect/internal/repository"
)

const (
	photoField   = "photo"
	maxPhotoSize = 10 << 20
)

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

func (s *Server) listPhotos(c *gin.Context) {
	items, err := s.photos.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal memuat galeri")
		return
	}
	c.JSON(http.StatusOK, mapSlice(items, photoDTO))
}

func (s *Server) uploadPhoto(c *gin.Context) {
	file, err := c.FormFile(photoField)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "File foto wajib diisi")
		return
	}
	if file.Size == 0 {
		response.Error(c, http.StatusBadRequest, "EMPTY_FILE", "File gambar kosong")
		return
	}
	if file.Size > maxPhotoSize {
		response.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("Ukuran file melebihi %d MB", maxPhotoSize>>20))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	if !allowedPhotoExts[ext] {
		response.Error(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Format gambar tidak didukung")
		return
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.uploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Gagal menyimpan foto")
		return
	}

	photo, err := s.photos.Create(c.Request.Context(), repository.CreatePhotoParams{
		UserID:  currentUser(c),
		Path:    "uploads/" + name,
		Caption: c.PostForm("keterangan"),
		Date:    c.PostForm("tanggal"),
		Weekday: c.PostForm("hari"),
	})
	if err != nil {
		_ = os.Remove(dst)
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menyimpan foto")
		return
	}

	c.JSON(http.StatusCreated, photoDTO(*photo))
}

func (s *Server) deletePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "ID foto tidak valid")
		return
	}

	path, err := s.photos.Delete(c.Request.Context(), currentUser(c), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Foto tidak ditemukan")
		case errors.Is(err, repository.ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Foto hanya bisa dihapus oleh pengunggah")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Gagal menghapus foto")
		}
		return
	}

	if err := os.Remove(filepath.Join(s.uploadDir, filepath.Base(path))); err != nil && !os.IsNotExist(err) {
		s.log.Warn("photo file not removed", zap.String("path", path), zap.Error(err))
	}
	response.Message(c, http.StatusOK, "Foto dihapus")
}
