package devserver

import (
	"ukonnect/internal/api"
	"ukonnect/internal/domain"
	"ukonnect/internal/repository"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type pushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type activityRequest struct {
	Title           string `json:"title" binding:"required"`
	StartTimeMillis int64  `json:"startTimeMillis" binding:"required"`
	EndTimeMillis   int64  `json:"endTimeMillis" binding:"required"`
	Status          string `json:"status"`
}

type loanCreateRequest struct {
	EquipmentID string `json:"alatId" binding:"required"`
	Quantity    int    `json:"qty"`
	StartAt     int64  `json:"tanggalMulai"`
	EndAt       int64  `json:"tanggalSelesai"`
}

type loanReturnRequest struct {
	Quantity int `json:"qty"`
}

type attendanceRequest struct {
	ID      string `json:"id" binding:"required"`
	Date    string `json:"tanggal"`
	Time    string `json:"jam"`
	Type    string `json:"tipe"`
	Payload string `json:"qrValue"`
	Status  string `json:"status"`
}

func activityDTO(a domain.Activity) api.ActivityDTO {
	return api.ActivityDTO{
		ID:              a.ID,
		Title:           a.Title,
		StartTimeMillis: api.Millis(a.Start),
		EndTimeMillis:   api.Millis(a.End),
		Status:          string(a.Status),
	}
}

func equipmentDTO(e repository.EquipmentRow) api.EquipmentDTO {
	return api.EquipmentDTO{
		ID:        e.ID,
		Name:      e.Name,
		Available: e.Available,
		Total:     e.Total,
		IconKey:   e.IconKey,
	}
}

func loanDTO(l domain.Loan) api.LoanDTO {
	return api.LoanDTO{
		ID:            l.ID,
		EquipmentID:   l.EquipmentID,
		EquipmentName: l.EquipmentName,
		BorrowedAt:    api.Millis(l.CreatedAt),
		StartAt:       api.Millis(l.StartAt),
		EndAt:         api.Millis(l.EndAt),
		Quantity:      l.Quantity,
		Status:        string(l.Status),
	}
}

func photoDTO(p domain.Photo) api.PhotoDTO {
	return api.PhotoDTO{
		ID:              p.ID,
		ImageURL:        p.ImageURL,
		Caption:         p.Caption,
		Date:            p.Date,
		Weekday:         p.Weekday,
		UploaderID:      p.UploaderID,
		CreatedAtMillis: api.Millis(p.CreatedAt),
	}
}

func attendanceDTO(r domain.AttendanceRecord) api.AttendanceDTO {
	return api.AttendanceDTO{
		ID:              r.ID,
		Date:            r.Date,
		Time:            r.Time,
		Type:            string(r.Type),
		Payload:         r.Payload,
		Status:          r.Status,
		CreatedAtMillis: api.Millis(r.CreatedAt),
	}
}

func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
