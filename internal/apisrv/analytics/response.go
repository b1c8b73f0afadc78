package analytics

import (
	"net/http"

	"github.com/go-chi/render"
)

// Response is the JSON envelope of every analytics endpoint.
type Response struct {
	HTTPStatusCode int `json:"-"`

	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *Response) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// OK wraps data in a success envelope.
func OK(data any) render.Renderer {
	return &Response{
		HTTPStatusCode: http.StatusOK,
		Success:        true,
		Data:           data,
	}
}

// ErrInternalServerError never exposes the underlying error to the client.
func ErrInternalServerError() render.Renderer {
	return &Response{
		HTTPStatusCode: http.StatusInternalServerError,
		Message:        "internal server error",
	}
}

// ErrServiceUnavailable is returned by the health check when the store is down.
func ErrServiceUnavailable() render.Renderer {
	return &Response{
		HTTPStatusCode: http.StatusServiceUnavailable,
		Message:        "service unavailable",
	}
}

// ErrUnauthorized rejects requests without a valid admin token.
func ErrUnauthorized() render.Renderer {
	return &Response{
		HTTPStatusCode: http.StatusUnauthorized,
		Message:        "unauthorized",
	}
}

// ErrTooManyRequests is returned once a client exceeds the rate limit.
func ErrTooManyRequests() render.Renderer {
	return &Response{
		HTTPStatusCode: http.StatusTooManyRequests,
		Message:        "too many requests",
	}
}
