// Package api exposes the reservation core over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ByeongIn-K/goat-server/internal/app"
)

// Config holds the HTTP surface knobs.
type Config struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	app     *app.App
	logger  zerolog.Logger
	echo    *echo.Echo
	addr    string
	stopRL  chan struct{}
	limiter *visitorLimiter
}

func NewServer(a *app.App, cfg Config, logger zerolog.Logger) *Server {
	s := &Server{
		app:    a,
		logger: logger,
		echo:   echo.New(),
		addr:   cfg.Addr,
		stopRL: make(chan struct{}),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(echomw.Recover())
	if cfg.RateLimitRPS > 0 {
		s.limiter = newVisitorLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		s.echo.Use(RateLimit(s.limiter))
		go s.limiter.runCleanup(s.stopRL)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.health)

	v1 := s.echo.Group("/v1")
	v1.GET("/restaurants", s.listRestaurants)
	v1.POST("/restaurants", s.createRestaurant)
	v1.PATCH("/restaurants/:id", s.updateRestaurant)
	v1.GET("/dashboard/:restaurantID", s.dashboard)
	v1.POST("/bookings", s.createBooking)
	v1.DELETE("/bookings/:id", s.deleteBooking)
	v1.POST("/bookings/:id/confirm", s.confirmBooking)
	v1.POST("/bookings/:id/reject", s.rejectBooking)
	v1.GET("/bookings/export", s.exportBookings)
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.addr).Msg("starting API server")
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopRL)
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func paramInt64(c echo.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
