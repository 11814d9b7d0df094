package httpclient

import (
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response is buffered.
const maxErrorBody = 1 << 20

// ResponseError is a non-2xx response from an upstream service. The body is
// buffered so the response can be closed before the error is inspected.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	body := e.Body
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, body)
}

// ReadResponseError buffers the body of a non-2xx response into a
// ResponseError. The response body is fully consumed and closed.
func ReadResponseError(resp *http.Response) *ResponseError {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}
	return &ResponseError{StatusCode: resp.StatusCode, Body: body}
}

// IsSuccess reports whether status is 2xx.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

