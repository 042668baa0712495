// Package httpapi exposes the thin HTTP surface over the ingestion
// pipeline: health check, persisted reads, a non-persisting preview, and a
// manual ingest trigger.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"NewsIngest/internal/ports"
	"NewsIngest/internal/usecase"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Server holds the handlers' collaborators.
type Server struct {
	ingestor *usecase.Ingestor
	news     ports.NewsRepository
	logger   *slog.Logger
}

// NewServer wires the HTTP surface.
func NewServer(ingestor *usecase.Ingestor, news ports.NewsRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ingestor: ingestor, news: news, logger: logger}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/", s.health)
	router.GET("/news", s.listNews)
	router.GET("/preview", s.preview)
	router.POST("/ingest", s.ingest)

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listNews serves persisted articles straight from the database; no call to
// the external API happens here.
func (s *Server) listNews(c *gin.Context) {
	limit := clamp(intQuery(c, "limit", defaultListLimit), 1, maxListLimit)
	offset := intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	articles, err := s.news.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"count":  len(articles),
		"data":   articles,
	})
}

// preview runs the pipeline without persistence, for inspecting the
// transformation and metrics.
func (s *Server) preview(c *gin.Context) {
	daysBack := intQuery(c, "days_back", 0)
	pageSize := intQuery(c, "page_size", 0)
	maxPages := intQuery(c, "max_pages", 0)

	curated, metrics, err := s.ingestor.Preview(c.Request.Context(), daysBack, pageSize, maxPages)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"count":   len(curated),
		"metrics": metrics,
		"data":    curated,
	})
}

type ingestRequest struct {
	DaysBack int `json:"days_back"`
	PageSize int `json:"page_size"`
	MaxPages int `json:"max_pages"`
}

// ingest runs the full persisting pipeline. Meant for orchestrators and
// manual triggers.
func (s *Server) ingest(c *gin.Context) {
	var req ingestRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return
		}
	}

	res, err := s.ingestor.ProcessIngestion(c.Request.Context(), req.DaysBack, req.PageSize, req.MaxPages)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":   "success",
		"inserted": res.Inserted,
		"metrics":  res.Metrics,
	})
}

func (s *Server) fail(c *gin.Context, code int, err error) {
	s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(code, gin.H{"status": "error", "message": err.Error()})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
