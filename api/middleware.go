package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
	userKey         = "user"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logger writes one access line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d latency_ms=%.3f ip=%s",
			requestID(c), c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000, c.ClientIP())
	}
}

// Recovery turns a panic into a 500 in the common error envelope.
func Recovery(errs ErrorResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				errs.Respond(c, fmt.Errorf("panic: %v", r))
			}
		}()
		c.Next()
	}
}

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, time.Duration, error)
}

type Middleware struct {
	auth    Authenticator
	limiter RateLimiter
	errs    ErrorResponder
}

func NewMiddleware(auth Authenticator, limiter RateLimiter, errs ErrorResponder) *Middleware {
	return &Middleware{auth: auth, limiter: limiter, errs: errs}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// Authenticate requires a valid access token of an active user.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			m.errs.Respond(c, domain.Unauthorized("no token provided"))
			return
		}
		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			m.errs.Respond(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// the request through either way.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := m.auth.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(userKey, user)
			}
		}
		c.Next()
	}
}

// RequireAction checks the capability table for the authenticated user.
func (m *Middleware) RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			m.errs.Respond(c, domain.Unauthorized("authentication required"))
			return
		}
		if !policy.Allowed(user.Role, action) {
			m.errs.Respond(c, domain.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RateLimit allows limit requests per client IP per window. Limiter errors
// let the request through.
func (m *Middleware) RateLimit(name string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil || limit <= 0 {
			c.Next()
			return
		}
		allowed, retryAfter, err := m.limiter.Allow(c.Request.Context(), name+":"+c.ClientIP(), limit, window)
		if err != nil {
			log.Printf("[HTTP] rate limiter error: %v", err)
			c.Next()
			return
		}
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody{
				Message:   "Too many attempts, please try again later",
				Code:      "rate_limited",
				RequestID: requestID(c),
			})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

func actorOf(c *gin.Context) policy.Actor {
	user := currentUser(c)
	if user == nil {
		return policy.Actor{}
	}
	return policy.Actor{UserID: user.ID, Role: user.Role}
}
