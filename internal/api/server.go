package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"weather-panel/internal/fetcher"
	"weather-panel/internal/format"
	"weather-panel/internal/icons"
	"weather-panel/internal/model"
)

// Server exposes the fetcher state and resolved icon assets as a read-only
// JSON/PNG surface.
type Server struct {
	router    *gin.Engine
	server    *http.Server
	fetcher   *fetcher.Fetcher
	icons     *icons.Resolver
	formatter *format.Formatter
	port      int
}

type ServerConfig struct {
	Port      int
	Fetcher   *fetcher.Fetcher
	Icons     *icons.Resolver
	Formatter *format.Formatter
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:    router,
		fetcher:   cfg.Fetcher,
		icons:     cfg.Icons,
		formatter: cfg.Formatter,
		port:      cfg.Port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.GET("/status", s.statusHandler)
		api.GET("/current", s.currentHandler)
		api.GET("/forecast", s.forecastHandler)
		api.GET("/icon", s.iconHandler)
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
	_, hasData := s.fetcher.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"internet_active": s.fetcher.InternetActive(),
		"has_data":        hasData,
		"timestamp":       time.Now(),
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	status := "DOWN"
	if s.fetcher.InternetActive() {
		status = "OK"
	}
	var lastUpdate int64
	if t := s.fetcher.LastUpdate(); !t.IsZero() {
		lastUpdate = t.Unix()
	}
	c.JSON(http.StatusOK, gin.H{
		"internet_status": status,
		"last_update":     lastUpdate,
		"last_attempt":    s.fetcher.LastAttempt(),
	})
}

func (s *Server) currentHandler(c *gin.Context) {
	weather, ok := s.fetcher.Current()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No data available yet",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conditions": weather,
		"display": gin.H{
			"temp":     s.formatter.Temp(weather.Temp),
			"humidity": s.formatter.Percentage(float64(weather.Humidity)),
			"precip":   s.formatter.Precip(weather.HourlyPrecip),
			"wind":     s.formatter.WindSpeed(weather.WindSpeed, weather.WindDeg),
		},
		"icon": s.icons.Resolve(weather.ConditionID, weather.ConditionTime),
	})
}

func (s *Server) forecastHandler(c *gin.Context) {
	forecast := s.fetcher.Forecast()
	if len(forecast) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "No data available yet",
		})
		return
	}

	entries := make([]gin.H, 0, len(forecast))
	for _, entry := range forecast {
		entries = append(entries, gin.H{
			"entry": entry,
			"display": gin.H{
				"time":          s.formatter.Time(entry.Timestamp),
				"temp":          s.formatter.Temp(entry.Temp),
				"precip_chance": s.formatter.Percentage(entry.PrecipChance),
			},
			"icon": s.icons.Resolve(entry.ConditionID, entry.ConditionTime),
		})
	}
	c.JSON(http.StatusOK, entries)
}

// iconHandler serves the resolved PNG for ?condition=<code>&time=<tag>, or
// one of the fixed auxiliary icons for ?name=<name>.
func (s *Server) iconHandler(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		c.File(s.icons.Icon(name))
		return
	}

	conditionStr := c.DefaultQuery("condition", "-1")
	condition, err := strconv.Atoi(conditionStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid condition code"})
		return
	}
	conditionTime := model.TimeOfDay(c.DefaultQuery("time", string(model.General)))

	c.File(s.icons.Resolve(condition, conditionTime))
}
