// Package v1 serves the JSON query API.
package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/coursebot/ai/routing"
)

// QueryHandler answers a routed query. *routing.Service implements it.
type QueryHandler interface {
	Handle(ctx context.Context, req routing.QueryRequest) routing.QueryResponse
}

var _ QueryHandler = (*routing.Service)(nil)

type APIV1Service struct {
	Router QueryHandler
}

func NewAPIV1Service(router QueryHandler) *APIV1Service {
	return &APIV1Service{Router: router}
}

// RegisterRoutes mounts the API on g.
func (s *APIV1Service) RegisterRoutes(g *echo.Group) {
	g.POST("/query", s.Query)
}

// Query handles POST /api/v1/query with body {"user_id": "...", "query": "..."}.
// It responds with {"answer": "..."} or {"error": "..."}.
func (s *APIV1Service) Query(c echo.Context) error {
	var req routing.QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, routing.QueryResponse{Error: "invalid request body"})
	}

	resp := s.Router.Handle(c.Request().Context(), req)
	if resp.Error != "" {
		return c.JSON(statusFor(req), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// Invalid requests are client errors; collaborator failures are reported as bad gateway.
func statusFor(req routing.QueryRequest) int {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Query) == "" {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
