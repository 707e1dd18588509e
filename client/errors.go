package client

import (
	"errors"
	"fmt"
)

var (
	ErrEncodingFailed = errors.New("encoding the request failed")
	ErrDecodingFailed = errors.New("decoding the response failed")
	ErrRequestFailed  = errors.New("sending the request failed")
)

// APIError is a non-2xx response with its {"detail": ...} message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// StatusOf returns the HTTP status of an *APIError in err's chain, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}
