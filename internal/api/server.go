package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"skycast/config"
	"skycast/internal/collector"
	"skycast/internal/forecaster"
	"skycast/internal/storage"
)

type Server struct {
	router      *gin.Engine
	server      *http.Server
	collector   *collector.Collector
	forecaster  *forecaster.Forecaster
	db          *storage.Database
	port        int
	config      *config.Config
	configPath  string
	configMutex sync.RWMutex
}

type ServerConfig struct {
	Port       int
	Collector  *collector.Collector
	Forecaster *forecaster.Forecaster
	Database   *storage.Database
	Config     *config.Config
	ConfigPath string
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:     router,
		collector:  cfg.Collector,
		forecaster: cfg.Forecaster,
		db:         cfg.Database,
		port:       cfg.Port,
		config:     cfg.Config,
		configPath: cfg.ConfigPath,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.GET("/forecast", s.forecastHandler)
		api.GET("/ratings", s.ratingsHandler)
		api.GET("/snapshots", s.snapshotsHandler)
		api.GET("/snapshots/latest", s.latestSnapshotHandler)
		api.GET("/stats/night", s.nightStatsHandler)

		api.GET("/config/forecast", s.getForecastConfigHandler)
		api.PUT("/config/forecast", s.updateForecastConfigHandler)
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	hasForecast := s.collector != nil && s.collector.GetLatestResult() != nil

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"has_forecast": hasForecast,
		"collecting":   s.collector != nil && s.collector.IsCollecting(),
		"timestamp":    time.Now(),
	})
}

// forecastHandler computes a fresh forecast (served from the forecaster's
// cache when warm) with the full hourly series, window, times, and ratings.
func (s *Server) forecastHandler(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'hours' value"})
		return
	}

	result, err := s.forecaster.Lookup(c.Request.Context(), hours)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ratingsHandler is the lightweight variant: ratings, window, photo times,
// and moon context without the hourly rows.
func (s *Server) ratingsHandler(c *gin.Context) {
	result, err := s.forecaster.Lookup(c.Request.Context(), 0)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated_at": result.GeneratedAt,
		"timezone":     result.Timezone,
		"window":       result.Window,
		"photo_times":  result.Times,
		"ratings":      result.Ratings,
		"moon":         result.Moon,
	})
}

func (s *Server) snapshotsHandler(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	limitStr := c.DefaultQuery("limit", "100")

	var limit int
	fmt.Sscanf(limitStr, "%d", &limit)
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	if fromStr != "" && toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date format"})
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date format"})
			return
		}

		snaps, err := s.db.GetSnapshotsByRange(from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, snaps)
		return
	}

	snaps, err := s.db.GetSnapshotsWithLimit(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snaps)
}

func (s *Server) latestSnapshotHandler(c *gin.Context) {
	snap, err := s.db.GetLatestSnapshot()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No snapshots yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) nightStatsHandler(c *gin.Context) {
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format"})
		return
	}

	stats, err := s.db.GetNightStats(date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type ForecastConfigResponse struct {
	Hours            int    `json:"hours"`
	DiffThreshold    int    `json:"diff_threshold"`
	CacheTTL         string `json:"cache_ttl"`
	SecondaryEnabled bool   `json:"secondary_enabled"`
}

type ForecastConfigRequest struct {
	Hours            int  `json:"hours"`
	DiffThreshold    int  `json:"diff_threshold"`
	SecondaryEnabled bool `json:"secondary_enabled"`
}

func (s *Server) getForecastConfigHandler(c *gin.Context) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	cfg := s.config.Forecast
	c.JSON(http.StatusOK, ForecastConfigResponse{
		Hours:            cfg.Hours,
		DiffThreshold:    cfg.DiffThreshold,
		CacheTTL:         cfg.CacheTTL.String(),
		SecondaryEnabled: cfg.SecondaryEnabled,
	})
}

func (s *Server) updateForecastConfigHandler(c *gin.Context) {
	var req ForecastConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Hours < 1 || req.Hours > 168 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be between 1 and 168"})
		return
	}
	if req.DiffThreshold < 0 || req.DiffThreshold > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "diff_threshold must be between 0 and 100"})
		return
	}

	s.configMutex.Lock()
	s.config.Forecast.Hours = req.Hours
	s.config.Forecast.DiffThreshold = req.DiffThreshold
	s.config.Forecast.SecondaryEnabled = req.SecondaryEnabled
	s.configMutex.Unlock()

	if err := s.saveConfigToFile(); err != nil {
		log.Printf("Warning: Failed to save config to file: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Configuration applied but not persisted to file",
			"warning": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Forecast configuration updated successfully. Restart to apply to the collector.",
	})
}

// saveConfigToFile writes the current forecast settings back to the YAML
// config file.
func (s *Server) saveConfigToFile() error {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	configPath := s.configPath
	if configPath == "" {
		configPath = "config.yaml"
	}
	viper.SetConfigFile(configPath)

	viper.Set("forecast.hours", s.config.Forecast.Hours)
	viper.Set("forecast.diff_threshold", s.config.Forecast.DiffThreshold)
	viper.Set("forecast.secondary_enabled", s.config.Forecast.SecondaryEnabled)

	return viper.WriteConfig()
}
