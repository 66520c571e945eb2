// Package server exposes story generation over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/user/ogstory/pkg/metrics"
	"github.com/user/ogstory/pkg/pipeline"
	"github.com/user/ogstory/pkg/ports"
)

// Generator renders the story image for a page URL.
type Generator interface {
	Generate(ctx context.Context, pageURL string) (pipeline.EncodedImage, error)
}

// Options configures the HTTP middleware.
type Options struct {
	RateLimit float64 // requests per second per client, 0 disables
	Burst     int
	BodyLimit string // e.g. "16K"
}

// Server serves the generation API.
type Server struct {
	echo    *echo.Echo
	gen     Generator
	logger  ports.Logger
	metrics *metrics.Metrics
}

type generateRequest struct {
	URL string `json:"url"`
}

type generateResponse struct {
	Image string `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// New creates a Server. m may be nil, in which case a fresh registry is used.
func New(gen Generator, opts Options, m *metrics.Metrics, logger ports.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		echo:    echo.New(),
		gen:     gen,
		logger:  logger.WithComponent("server"),
		metrics: m,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.setupMiddleware(opts)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(opts Options) {
	e := s.echo

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Use(s.metrics.Middleware())

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == "/healthz" || p == "/metrics"
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(opts.RateLimit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			},
		}))
	}
}

func (s *Server) setupRoutes() {
	e := s.echo
	e.POST("/api/generate", s.handleGenerate)
	e.GET("/api/image", s.handleImage)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := validateURL(req.URL); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	img, err := s.generate(c.Request().Context(), req.URL)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, generateResponse{Image: img.DataURI})
}

func (s *Server) handleImage(c echo.Context) error {
	pageURL := c.QueryParam("url")
	if err := validateURL(pageURL); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	img, err := s.generate(c.Request().Context(), pageURL)
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", img.PNG)
}

func (s *Server) generate(ctx context.Context, pageURL string) (pipeline.EncodedImage, error) {
	start := time.Now()
	img, err := s.gen.Generate(ctx, pageURL)
	if err != nil {
		s.metrics.ObserveGeneration(time.Since(start), 0, pipeline.KindOf(err).String())
		s.logger.Error("Failed to generate story for %s: %s", pageURL, err.Error())
		return pipeline.EncodedImage{}, err
	}
	s.metrics.ObserveGeneration(time.Since(start), len(img.PNG), "")
	return img, nil
}

func writeError(c echo.Context, err error) error {
	kind := pipeline.KindOf(err)
	return c.JSON(StatusForKind(kind), errorResponse{
		Error: err.Error(),
		Kind:  kind.String(),
	})
}

// StatusForKind maps a pipeline error kind to an HTTP status.
func StatusForKind(k pipeline.Kind) int {
	switch k {
	case pipeline.KindFetch:
		return http.StatusBadGateway
	case pipeline.KindTimeout:
		return http.StatusGatewayTimeout
	case pipeline.KindParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("url must be an absolute http or https URL")
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Listening on %s", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
