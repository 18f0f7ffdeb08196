package v1

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/coursebot/ai/catalog"
	"github.com/hrygo/coursebot/ai/classifier"
	"github.com/hrygo/coursebot/ai/experts"
	"github.com/hrygo/coursebot/ai/observability/logging"
	"github.com/hrygo/coursebot/ai/routing"
)

type progressClassifier struct{}

func (progressClassifier) Classify(context.Context, string) (classifier.Result, error) {
	return classifier.Result{Route: catalog.RouteProgressReport.String(), Score: 0.8, Matched: true}, nil
}

func TestQuery_LogsUserIDOnce(t *testing.T) {
	router, err := routing.NewService(routing.Config{
		Classifier: progressClassifier{},
		Dispatcher: experts.NewDispatcher(),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := logging.New("dev", "debug", &buf)

	e := echo.New()
	g := e.Group("/api/v1")
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(logging.ToContext(c.Request().Context(), logger)))
			return next(c)
		}
	})
	NewAPIV1Service(router).RegisterRoutes(g)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"user_id":"alice","query":"Can I have an update on my lab progress?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "user_id="), line)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(routing.QueryRequest{Query: "q"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(routing.QueryRequest{UserID: "u", Query: "  "}))
	assert.Equal(t, http.StatusBadGateway, statusFor(routing.QueryRequest{UserID: "u", Query: "q"}))
}
