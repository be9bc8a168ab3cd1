// Package http exposes the delivery read side over HTTP.
package http

import (
	"errors"
	"net/http"

	"deliveries/internal/core/application/usecases/queries"
	"deliveries/internal/core/domain/model/kernel"
	"deliveries/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Server serves delivery state queries. Writes go through the command topics,
// so the HTTP surface stays read only apart from the health probe.
type Server struct {
	getDeliveryHandler queries.GetDeliveryQueryHandler
}

// NewServer creates an HTTP server around the delivery query handler.
func NewServer(getDeliveryHandler queries.GetDeliveryQueryHandler) *Server {
	return &Server{
		getDeliveryHandler: getDeliveryHandler,
	}
}

// RegisterRoutes mounts the server's routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.GetHealth)
	e.GET("/api/v1/deliveries/:id", s.GetDelivery)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// GetDelivery handles GET /api/v1/deliveries/:id and returns the delivery
// state including its registration history.
func (s *Server) GetDelivery(ctx echo.Context) error {
	id, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid delivery id: " + ctx.Param("id"),
		})
	}

	query, err := queries.NewGetDeliveryQuery(id)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid query: " + err.Error(),
		})
	}

	response, err := s.getDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, ErrorResponse{
				Code:    http.StatusNotFound,
				Message: "Delivery not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve delivery",
		})
	}

	return ctx.JSON(http.StatusOK, response)
}
