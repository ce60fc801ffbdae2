package api

// Wire types of the UKOnnect REST service. Field names follow the server.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string  `json:"message"`
	User    *string `json:"user"`
	UserID  *int64  `json:"userId"`
	Token   *string `json:"token"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  *int64 `json:"userId"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ActivityDTO struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	StartTimeMillis int64  `json:"startTimeMillis"`
	EndTimeMillis   int64  `json:"endTimeMillis"`
	Status          string `json:"status"`
}

type ActivityUpsertRequest struct {
	Title           string `json:"title"`
	StartTimeMillis int64  `json:"startTimeMillis"`
	EndTimeMillis   int64  `json:"endTimeMillis"`
	Status          string `json:"status"`
}

type EquipmentDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"nama"`
	Available int     `json:"stokTersedia"`
	Total     int     `json:"stokTotal"`
	IconKey   *string `json:"iconKey"`
}

type LoanDTO struct {
	ID            string `json:"id"`
	EquipmentID   string `json:"alatId"`
	EquipmentName string `json:"namaEquipment"`
	BorrowedAt    int64  `json:"waktuPinjam"`
	StartAt       int64  `json:"tanggalMulai"`
	EndAt         int64  `json:"tanggalSelesai"`
	Quantity      int    `json:"jumlah"`
	Status        string `json:"status"`
}

type LoanCreateRequest struct {
	EquipmentID string `json:"alatId"`
	Quantity    int    `json:"qty"`
	StartAt     int64  `json:"tanggalMulai"`
	EndAt       int64  `json:"tanggalSelesai"`
}

type LoanReturnRequest struct {
	Quantity int `json:"qty"`
}

type LoanReturnResponse struct {
	Message   string `json:"message"`
	ID        string `json:"id"`
	Remaining int    `json:"jumlahSisa"`
	Status    string `json:"status"`
}

type PhotoDTO struct {
	ID              int64  `json:"id"`
	ImageURL        string `json:"imageUrl"`
	Caption         string `json:"keterangan"`
	Date            string `json:"tanggal"`
	Weekday         string `json:"hari"`
	UploaderID      int64  `json:"uploadedByUserId"`
	CreatedAtMillis int64  `json:"createdAtMillis"`
}

// PhotoUpload is sent as multipart/form-data: the binary goes in the
// "photo" part, the rest as plain text parts.
type PhotoUpload struct {
	Content  []byte
	FileName string
	Caption  string
	Date     string
	Weekday  string
}

type AttendanceDTO struct {
	ID              string `json:"id"`
	Date            string `json:"tanggal"`
	Time            string `json:"jam"`
	Type            string `json:"tipe"`
	Payload         string `json:"qrValue"`
	Status          string `json:"status"`
	CreatedAtMillis int64  `json:"createdAtMillis"`
}

type AttendanceUpsertRequest struct {
	ID      string `json:"id"`
	Date    string `json:"tanggal"`
	Time    string `json:"jam"`
	Type    string `json:"tipe"`
	Payload string `json:"qrValue"`
	Status  string `json:"status"`
}
