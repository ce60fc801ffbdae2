// Package devserver is an in-process implementation of the UKOnnect REST
// contract backed by gorm. It serves local development and the end-to-end
// suite; it is not the production backend.
package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ukonnect/internal/middleware"
	"ukonnect/internal/pkg/jwt"
	"ukonnect/internal/pkg/metrics"
	"ukonnect/internal/repository"
)

type Options struct {
	DB        *gorm.DB
	JWT       *jwt.Service
	UploadDir string
	Logger    *zap.Logger
	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
	Origins  []string
	Now      func() time.Time
}

type Server struct {
	jwt       *jwt.Service
	log       *zap.Logger
	hub       *Hub
	uploadDir string
	gatherer  prometheus.Gatherer
	origins   []string
	now       func() time.Time

	users      *repository.UserRepository
	equipment  *repository.EquipmentRepository
	loans      *repository.LoanRepository
	activities *repository.ActivityRepository
	photos     *repository.PhotoRepository
	attendance *repository.AttendanceRepository
	pushTokens *repository.PushTokenRepository
}

// New migrates the schema and prepares the upload directory.
func New(opts Options) (*Server, error) {
	if opts.DB == nil {
		return nil, errors.New("devserver: db is required")
	}
	if opts.JWT == nil {
		return nil, errors.New("devserver: jwt service is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := repository.Migrate(opts.DB); err != nil {
		return nil, fmt.Errorf("devserver: migrate: %w", err)
	}
	if err := os.MkdirAll(opts.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("devserver: upload dir: %w", err)
	}

	return &Server{
		jwt:        opts.JWT,
		log:        opts.Logger.Named("devserver"),
		hub:        NewHub(),
		uploadDir:  opts.UploadDir,
		gatherer:   opts.Gatherer,
		origins:    opts.Origins,
		now:        opts.Now,
		users:      repository.NewUserRepository(opts.DB),
		equipment:  repository.NewEquipmentRepository(opts.DB),
		loans:      repository.NewLoanRepository(opts.DB),
		activities: repository.NewActivityRepository(opts.DB),
		photos:     repository.NewPhotoRepository(opts.DB),
		attendance: repository.NewAttendanceRepository(opts.DB),
		pushTokens: repository.NewPushTokenRepository(opts.DB),
	}, nil
}

func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) Close() { s.hub.Close() }

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(s.log),
		middleware.ErrorLogger(s.log),
		middleware.CORS(s.origins...),
		countRequests(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "push_clients": s.hub.OnlineCount()})
	})
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(s.gatherer)))
	}
	r.Static("/uploads", s.uploadDir)

	// public
	r.POST("/login", s.login)
	r.POST("/register", s.register)
	r.POST("/fcm-token", middleware.OptionalJWT(s.jwt), s.updatePushToken)

	protected := r.Group("/")
	protected.Use(middleware.JWTAuth(s.jwt))
	{
		protected.GET("/ws/push", s.handlePush)

		protected.GET("/aktivitas", s.listActivities)
		protected.POST("/aktivitas", s.createActivity)
		protected.PUT("/aktivitas/:id", s.updateActivity)
		protected.DELETE("/aktivitas/:id", s.deleteActivity)

		protected.GET("/alat", s.listEquipment)

		protected.GET("/peminjaman", s.listLoans)
		protected.POST("/peminjaman", s.createLoan)
		protected.POST("/peminjaman/:id/kembalikan", s.returnLoan)
		protected.DELETE("/peminjaman/:id", s.deleteLoan)

		protected.GET("/galeri", s.listPhotos)
		protected.POST("/galeri", s.uploadPhoto)
		protected.DELETE("/galeri/:id", s.deletePhoto)

		protected.GET("/absensi", s.listAttendance)
		protected.POST("/absensi", s.upsertAttendance)
		protected.DELETE("/absensi/:id", s.deleteAttendance)
	}

	return r
}

func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ServerRequests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status()/100)+"xx").
			Inc()
	}
}

func currentUser(c *gin.Context) int64 {
	return c.GetInt64(middleware.CtxUserID)
}
