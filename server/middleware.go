package server

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RequestIDKey is the header and context key holding the request id.
const RequestIDKey = "X-Request-ID"

// requestID reuses the incoming request id or assigns a new one.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDKey, id)
		c.Set(RequestIDKey, id)

		return c.Next()
	}
}

func getRequestID(c *fiber.Ctx) string {
	id, ok := c.Locals(RequestIDKey).(string)
	if !ok || id == "" {
		return "unknown"
	}
	return id
}

// accessLog logs every request once it has been served.
func accessLog(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
		}

		status := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"request_id":    getRequestID(c),
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    time.Since(start).Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"response_size": len(c.Response().Body()),
		})
		if err != nil {
			entry = entry.WithError(err)
		}

		switch {
		case status >= 500:
			entry.Error("server error")
		case status >= 400:
			entry.Warn("client error")
		default:
			entry.Info("success")
		}
		return nil
	}
}

// rateLimiter keeps one token bucket per client IP.
type rateLimiter struct {
	bucket    map[string]*rate.Limiter
	rate      rate.Limit
	burstSize int
	mutex     sync.Mutex
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*rate.Limiter),
		rate:      reqRate,
		burstSize: burstSize,
	}
}

func (r *rateLimiter) limiterFor(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	l, ok := r.bucket[ip]
	if !ok {
		l = rate.NewLimiter(r.rate, r.burstSize)
		r.bucket[ip] = l
	}
	return l
}

func (r *rateLimiter) handler(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !r.limiterFor(ip).Allow() {
			log.WithField("ip", ip).Warn("too many requests")
			return errTooManyRequests
		}
		return c.Next()
	}
}
