package waitlistapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout means an attempt hit its deadline. Only these are retried.
	ErrTimeout = errors.New("waitlist api: request timed out")
	// ErrUnreachable means the request never got an HTTP answer.
	ErrUnreachable = errors.New("waitlist api: server unreachable")
)

// ServerError is a rejection by the backend: a non-2xx status, or a 2xx
// whose body says success:false.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("waitlist api rejected submission (status %d): %s", e.StatusCode, e.Message)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// classify maps a transport error from one attempt onto the error taxonomy.
// attemptCtx is the context the attempt ran with.
func classify(attemptCtx context.Context, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if errors.Is(attemptCtx.Err(), context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnreachable, err)
}
