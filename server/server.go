// Package server exposes the face detector over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/esimov/jfda"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Detector is the part of jfda.Detector the service depends on.
type Detector interface {
	DetectTimed(img image.Image, p jfda.Params) (jfda.BoxSet, jfda.Timing, error)
	Stages() int
}

// ServerOption configures a Server.
type ServerOption func(*Server) error

// Server is the HTTP detection service.
type Server struct {
	app       *fiber.App
	detector  Detector
	params    jfda.Params
	cache     Cache
	log       logrus.FieldLogger
	limiter   *rateLimiter
	bodyLimit int
}

// WithDetector sets the detector and the default detection parameters.
func WithDetector(d Detector, p jfda.Params) ServerOption {
	return func(s *Server) error {
		if d == nil {
			return errors.New("detector is required")
		}
		if err := p.Validate(); err != nil {
			return err
		}
		s.detector = d
		s.params = p
		return nil
	}
}

// WithLogger sets the logger used for access and error logs.
func WithLogger(l logrus.FieldLogger) ServerOption {
	return func(s *Server) error {
		s.log = l
		return nil
	}
}

// WithCache enables result caching.
func WithCache(c Cache) ServerOption {
	return func(s *Server) error {
		s.cache = c
		return nil
	}
}

// WithRateLimit limits every client IP to r requests per second with the given burst.
func WithRateLimit(r float64, burst int) ServerOption {
	return func(s *Server) error {
		if r <= 0 || burst <= 0 {
			return fmt.Errorf("%w: invalid rate limit %g/%d", jfda.ErrConfig, r, burst)
		}
		s.limiter = newRateLimiter(rate.Limit(r), burst)
		return nil
	}
}

// WithBodyLimit sets the maximum accepted request body size in bytes.
func WithBodyLimit(n int) ServerOption {
	return func(s *Server) error {
		s.bodyLimit = n
		return nil
	}
}

// New creates the service and registers its routes.
func New(options ...ServerOption) (*Server, error) {
	s := &Server{}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if s.detector == nil {
		return nil, errors.New("detector is required")
	}
	if s.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		s.log = discard
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "jfda",
		BodyLimit:             s.bodyLimit,
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(requestID())
	s.app.Use(accessLog(s.log))
	if s.limiter != nil {
		s.app.Use(s.limiter.handler(s.log))
	}

	s.app.Get("/health", s.health)
	v1 := s.app.Group("/v1")
	v1.Post("/detect", s.detect)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP requests on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("server listening")
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	msg := err.Error()
	if code == fiber.StatusInternalServerError {
		msg = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{
		"error":      msg,
		"request_id": getRequestID(c),
	})
}
