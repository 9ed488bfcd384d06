// Package httpapi exposes the non-WebSocket surface: the marketplace event
// intake, health, process stats and Prometheus metrics.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"denti-chat/domain/event"
	"denti-chat/observability"
	"denti-chat/services"
)

type Server struct {
	bridge services.IBridgeService
	log    *slog.Logger
}

func NewServer(bridge services.IBridgeService, log *slog.Logger) *Server {
	return &Server{bridge: bridge, log: log}
}

// RegisterRoutes mounts the HTTP surface on the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.POST("/events", s.handleEvent)
	e.GET("/healthz", s.handleHealth)
	e.GET("/stats", s.handleStats)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// handleEvent consumes one bus delivery. The bus delivers at least once; a
// non-2xx status here triggers redelivery, so handler errors are surfaced,
// never swallowed.
func (s *Server) handleEvent(c echo.Context) error {
	var envelope event.Envelope
	if err := c.Bind(&envelope); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed event envelope")
	}

	if err := s.bridge.Handle(c.Request().Context(), envelope.Detail); err != nil {
		s.log.Error("event handling failed",
			"eventType", envelope.Detail.Type,
			"clinicId", envelope.Detail.ClinicID,
			"error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, observability.Snapshot())
}
