// Package server serves an interactive comparison chart over HTTP.
//
// Every request runs the whole pipeline from fresh data: the server keeps no dataset between
// requests, only its configuration.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/curves"
	"github.com/etnz/curves/date"
	"github.com/etnz/curves/renderer"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
)

//go:embed static/index.html
var static embed.FS

// Server holds the configuration of the chart server.
type Server struct {
	Pipeline *curves.Pipeline
	// Defaults is the state used for parameters absent from a request.
	// A nil selection selects every series.
	Defaults curves.DisplayState
	// Benchmarks names the benchmark series, drawn apart from strategies.
	Benchmarks []string
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CurvesRequest holds the query parameters of /api/curves.
type CurvesRequest struct {
	Scale     string `form:"scale" binding:"omitempty,oneof=linear lin log logarithmic"`
	Principal string `form:"principal" binding:"omitempty,number"`
	Inflation string `form:"inflation" binding:"omitempty,boolean"`
	From      string `form:"from"`
	To        string `form:"to"`
}

// CurvesResponse is the body of /api/curves.
type CurvesResponse struct {
	View curves.View `json:"view"`
	// Names lists every available series, selected or not.
	Names      []string `json:"names"`
	Benchmarks []string `json:"benchmarks"`
	Inflation  bool     `json:"inflation"`
}

// Router returns the gin engine serving the page and the API.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", func(c *gin.Context) {
		page, err := static.ReadFile("static/index.html")
		if err != nil {
			fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})

	api := router.Group("/api")
	{
		api.GET("/curves", s.getCurves)
		api.GET("/chart.png", s.getChart)
	}
	return router
}

// Handler returns the router wrapped with permissive CORS, so the API can feed other pages.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.Router())
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("Starting chart server on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// recovery turns panics into an ErrorResponse.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "An unexpected error occurred",
		}})
		c.Abort()
	})
}

// state builds the display state of a request, starting from the server defaults.
func (s *Server) state(c *gin.Context) (curves.DisplayState, error) {
	var req CurvesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return curves.DisplayState{}, err
	}
	var err error
	state := s.Defaults
	if values, ok := c.GetQueryArray("s"); ok {
		// an explicit empty "s=" deselects everything.
		state.Selection = []string{}
		for _, v := range values {
			for _, name := range strings.Split(v, ",") {
				if name = strings.TrimSpace(name); name != "" {
					state.Selection = append(state.Selection, name)
				}
			}
		}
	}
	if req.Scale != "" {
		scale, err := curves.ParseScale(req.Scale)
		if err != nil {
			return state, err
		}
		state.Scale = scale
	}
	if req.Principal != "" {
		p, err := decimal.NewFromString(req.Principal)
		if err != nil {
			return state, err
		}
		state.Principal = p
	}
	if req.Inflation != "" {
		if state.Inflation, err = strconv.ParseBool(req.Inflation); err != nil {
			return state, err
		}
	}
	from, to := state.Range.From, state.Range.To
	if req.From != "" {
		if from, err = date.Parse(req.From); err != nil {
			return state, err
		}
	}
	if req.To != "" {
		if to, err = date.Parse(req.To); err != nil {
			return state, err
		}
	}
	state.Range = date.Between(from, to)
	return state, nil
}

// compute runs the pipeline for one request.
func (s *Server) compute(ctx context.Context, state curves.DisplayState) (curves.View, []string, error) {
	set, table, err := s.Pipeline.Load(ctx, state)
	if err != nil {
		return curves.View{}, nil, err
	}
	if state.Selection == nil {
		state.Selection = curves.SelectAll(set)
	}
	v, err := s.Pipeline.Compute(set, table, state)
	return v, set.Names(), err
}

// fail writes the error response matching err.
func fail(c *gin.Context, err error) {
	status, code := http.StatusBadGateway, "SOURCE_ERROR"
	switch {
	case curves.IsPrecondition(err):
		status, code = http.StatusUnprocessableEntity, "UNDEFINED_COMPUTATION"
	case curves.IsInput(err):
		status, code = http.StatusUnprocessableEntity, "INVALID_DATA"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, "CANCELED"
	}
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()}})
}

// getCurves handles GET /api/curves
func (s *Server) getCurves(c *gin.Context) {
	state, err := s.state(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	v, names, err := s.compute(c.Request.Context(), state)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, CurvesResponse{
		View:       v,
		Names:      names,
		Benchmarks: s.Benchmarks,
		Inflation:  state.Inflation,
	})
}

// getChart handles GET /api/chart.png
func (s *Server) getChart(c *gin.Context) {
	state, err := s.state(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	v, _, err := s.compute(c.Request.Context(), state)
	if err != nil {
		fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := renderer.RenderChart(&buf, v, renderer.ChartOptions{Benchmarks: s.Benchmarks}); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{Code: "CHART_ERROR", Message: err.Error()}})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
