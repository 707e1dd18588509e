package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-loans-go/ledger"
	"github.com/AntonStoeckl/library-loans-go/service/auth"
)

const (
	detailNotAuthenticated = "Authentication credentials were not provided."
	detailInvalidToken     = "Given token not valid for any token type"
	detailServerError      = "A server error occurred."
	detailNotFound         = "Not found."
)

var errMalformedRequest = errors.New("malformed request")

type errorResponse struct {
	Detail string `json:"detail"`
}

// statusFor maps an error to its HTTP status and the detail shown to the client.
// Internal errors never leak their message.
func statusFor(err error) (int, string) {
	switch {
	case auth.IsAuthenticationError(err):
		return http.StatusUnauthorized, detail(err)
	case errors.Is(err, ledger.ErrPermissionDenied):
		return http.StatusForbidden, detail(err)
	case ledger.IsNotFoundError(err):
		return http.StatusNotFound, detail(err)
	case ledger.IsValidationError(err), errors.Is(err, errMalformedRequest):
		return http.StatusBadRequest, detail(err)
	case errors.Is(err, context.Canceled):
		return 499, "Request canceled."
	default:
		return http.StatusInternalServerError, detailServerError
	}
}

// writeError renders err and logs it when it is not the client's fault.
func (s *server) writeError(c *gin.Context, err error) {
	status, message := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String(logAttrRequestID, requestIDFrom(c)),
			slog.String("error", err.Error()),
		)
	}

	c.AbortWithStatusJSON(status, errorResponse{Detail: message})
}

func abortWithDetail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: message})
}

// detail uses the first line of the message, which is the sentinel when errors were joined.
func detail(err error) string {
	message, _, _ := strings.Cut(err.Error(), "\n")

	r, size := utf8.DecodeRuneInString(message)
	if r == utf8.RuneError {
		return message
	}

	return string(unicode.ToUpper(r)) + message[size:]
}
