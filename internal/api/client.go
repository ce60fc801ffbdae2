package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ukonnect/internal/domain"
	"ukonnect/internal/pkg/metrics"
)

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 64 * 1024
	photoPartName   = "photo"
	contentTypeJSON = "application/json"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

type authMode int

const (
	authNone authMode = iota
	authIfPresent
	authBearer
)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUnauthorizedHook registers fn to run whenever the server answers 401.
// It is the signal to force a new login.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// Client implements Service over HTTP.
type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            *zap.Logger
}

var _ Service = (*Client)(nil)

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("api: base url is empty")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// ResolveURL turns a server-relative path into an absolute URL.
func (c *Client) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.doJSON(ctx, "login", http.MethodPost, "/login", req, authNone, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.doJSON(ctx, "register", http.MethodPost, "/register", req, authNone, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePushToken(ctx context.Context, token string) error {
	return c.doJSON(ctx, "push_token", http.MethodPost, "/fcm-token", PushTokenRequest{Token: token}, authIfPresent, nil)
}

func (c *Client) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	var dtos []ActivityDTO
	if err := c.doJSON(ctx, "activity_list", http.MethodGet, "/aktivitas", nil, authBearer, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) CreateActivity(ctx context.Context, req ActivityUpsertRequest) (*domain.Activity, error) {
	var dto ActivityDTO
	if err := c.doJSON(ctx, "activity_create", http.MethodPost, "/aktivitas", req, authBearer, &dto); err != nil {
		return nil, err
	}
	a := dto.toDomain()
	return &a, nil
}

func (c *Client) UpdateActivity(ctx context.Context, id int64, req ActivityUpsertRequest) (*domain.Activity, error) {
	var dto ActivityDTO
	path := "/aktivitas/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, "activity_update", http.MethodPut, path, req, authBearer, &dto); err != nil {
		return nil, err
	}
	a := dto.toDomain()
	return &a, nil
}

func (c *Client) DeleteActivity(ctx context.Context, id int64) error {
	path := "/aktivitas/" + strconv.FormatInt(id, 10)
	return c.doJSON(ctx, "activity_delete", http.MethodDelete, path, nil, authBearer, nil)
}

func (c *Client) ListEquipment(ctx context.Context) ([]domain.Equipment, error) {
	var dtos []EquipmentDTO
	if err := c.doJSON(ctx, "equipment_list", http.MethodGet, "/alat", nil, authBearer, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Equipment, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) ListLoans(ctx context.Context) ([]domain.Loan, error) {
	var dtos []LoanDTO
	if err := c.doJSON(ctx, "loan_list", http.MethodGet, "/peminjaman", nil, authBearer, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Loan, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) CreateLoan(ctx context.Context, req LoanCreateRequest) (*domain.Loan, error) {
	var dto LoanDTO
	if err := c.doJSON(ctx, "loan_create", http.MethodPost, "/peminjaman", req, authBearer, &dto); err != nil {
		return nil, err
	}
	l := dto.toDomain()
	return &l, nil
}

func (c *Client) ReturnLoan(ctx context.Context, id string, qty int) (*LoanReturnResponse, error) {
	var out LoanReturnResponse
	path := "/peminjaman/" + url.PathEscape(id) + "/kembalikan"
	if err := c.doJSON(ctx, "loan_return", http.MethodPost, path, LoanReturnRequest{Quantity: qty}, authBearer, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLoan(ctx context.Context, id string) error {
	return c.doJSON(ctx, "loan_delete", http.MethodDelete, "/peminjaman/"+url.PathEscape(id), nil, authBearer, nil)
}

func (c *Client) ListPhotos(ctx context.Context) ([]domain.Photo, error) {
	var dtos []PhotoDTO
	if err := c.doJSON(ctx, "photo_list", http.MethodGet, "/galeri", nil, authBearer, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Photo, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) UploadPhoto(ctx context.Context, upload PhotoUpload) (*domain.Photo, error) {
	body, contentType, err := encodePhotoUpload(upload)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/galeri", body, contentType, authBearer)
	if err != nil {
		return nil, err
	}
	var dto PhotoDTO
	if err := c.exec("photo_upload", req, &dto); err != nil {
		return nil, err
	}
	p := dto.toDomain()
	return &p, nil
}

func (c *Client) DeletePhoto(ctx context.Context, id int64) error {
	path := "/galeri/" + strconv.FormatInt(id, 10)
	return c.doJSON(ctx, "photo_delete", http.MethodDelete, path, nil, authBearer, nil)
}

func (c *Client) ListAttendance(ctx context.Context) ([]domain.AttendanceRecord, error) {
	var dtos []AttendanceDTO
	if err := c.doJSON(ctx, "attendance_list", http.MethodGet, "/absensi", nil, authBearer, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.AttendanceRecord, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) UpsertAttendance(ctx context.Context, req AttendanceUpsertRequest) error {
	return c.doJSON(ctx, "attendance_upsert", http.MethodPost, "/absensi", req, authBearer, nil)
}

func (c *Client) DeleteAttendance(ctx context.Context, id string) error {
	return c.doJSON(ctx, "attendance_delete", http.MethodDelete, "/absensi/"+url.PathEscape(id), nil, authBearer, nil)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in any, auth authMode, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
		contentType = contentTypeJSON
	}
	req, err := c.newRequest(ctx, method, path, body, contentType, auth)
	if err != nil {
		return err
	}
	return c.exec(op, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string, auth authMode) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth != authNone && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) exec(op string, req *http.Request, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RemoteCalls.WithLabelValues(op, metrics.Outcome(err)).Inc()
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("remote call failed",
			zap.String("op", op),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("remote call",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// readErrorMessage understands both {"message": "..."} and the
// {"error": {"message": "..."}} envelope.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Error) > 0 {
		var s string
		if json.Unmarshal(body.Error, &s) == nil {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body.Error, &nested) == nil {
			return nested.Message
		}
	}
	return ""
}

func encodePhotoUpload(u PhotoUpload) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	name := u.FileName
	if name == "" {
		name = fmt.Sprintf("photo_%d.jpg", time.Now().UnixMilli())
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, photoPartName, name))
	h.Set("Content-Type", detectImageType(u.Content))
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("photo_upload: create part: %w", err)
	}
	if _, err := part.Write(u.Content); err != nil {
		return nil, "", fmt.Errorf("photo_upload: write part: %w", err)
	}

	fields := []struct{ name, value string }{
		{"keterangan", u.Caption},
		{"tanggal", u.Date},
		{"hari", u.Weekday},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("photo_upload: write %s: %w", f.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("photo_upload: close multipart: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

func detectImageType(b []byte) string {
	mimeType := strings.Split(http.DetectContentType(b), ";")[0]
	if strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return "image/jpeg"
}
