package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// RawError is a failed remote call as seen at the HTTP client boundary. It is
// one of HTTPError, TransportError or UnknownError.
type RawError interface {
	rawError()
}

// HTTPError is a response that arrived with a non-success status.
type HTTPError struct {
	Status int
	Body   []byte
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Err error
}

// UnknownError is anything else that went wrong around a remote call.
type UnknownError struct {
	Raw any
}

func (HTTPError) rawError()      {}
func (TransportError) rawError() {}
func (UnknownError) rawError()   {}

// Failure carries a RawError through ordinary error returns.
type Failure struct {
	Op  string
	Raw RawError
}

func (f *Failure) Error() string {
	switch r := f.Raw.(type) {
	case HTTPError:
		return fmt.Sprintf("%s: status %d", f.Op, r.Status)
	case TransportError:
		return fmt.Sprintf("%s: transport: %v", f.Op, r.Err)
	case UnknownError:
		return fmt.Sprintf("%s: %v", f.Op, r.Raw)
	default:
		return f.Op + ": failed"
	}
}

func (f *Failure) Unwrap() error {
	switch r := f.Raw.(type) {
	case TransportError:
		return r.Err
	case UnknownError:
		if err, ok := r.Raw.(error); ok {
			return err
		}
	}
	return nil
}

// FromError recovers the RawError behind err. Errors that did not come from
// the client boundary are mapped to TransportError when they look like a
// connectivity failure and to UnknownError otherwise.
func FromError(err error) RawError {
	var f *Failure
	if errors.As(err, &f) && f.Raw != nil {
		return f.Raw
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return TransportError{Err: err}
	}
	return UnknownError{Raw: err}
}
