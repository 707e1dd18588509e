package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
)

const (
	headerRequestID = "X-Request-ID"

	ctxKeyRequestID = "request_id"
	ctxKeyClaims    = "claims"

	logAttrRequestID = "request_id"
)

// requestID propagates the caller's request id or creates one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ctxKeyRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.InfoContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
			slog.String(logAttrRequestID, requestIDFrom(c)),
		)
	}
}

// authenticate reads the bearer token if there is one. Invalid tokens and tokens of deleted
// users are always rejected, a missing token only when required is set.
func (s *server) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := bearerToken(c.GetHeader("Authorization"))
		if !found {
			if required {
				abortWithDetail(c, http.StatusUnauthorized, detailNotAuthenticated)
				return
			}

			c.Next()
			return
		}

		claims, err := s.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !auth.IsAuthenticationError(err) {
				s.writeError(c, err)
				return
			}

			abortWithDetail(c, http.StatusUnauthorized, detailInvalidToken)
			return
		}

		c.Set(ctxKeyClaims, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

func claimsFrom(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(ctxKeyClaims)
	if !ok {
		return auth.Claims{}, false
	}

	claims, ok := value.(auth.Claims)

	return claims, ok
}

// actorFrom must only be used behind authenticate(true).
func actorFrom(c *gin.Context) ledger.Actor {
	claims, _ := claimsFrom(c)

	return claims.Actor()
}
