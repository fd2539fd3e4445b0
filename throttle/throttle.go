// Package throttle rate-limits outbound connections using a token-bucket
// limiter from [golang.org/x/time/rate].
//
// Every request opens its own connection, so limiting dials limits
// requests:
//
//	d, err := throttle.NewDialer(
//		10, // connections per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		netDialer,
//	)
//
// When the bucket is empty, Dial blocks until a token becomes available or
// the context ends.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/adamwoolhether/rawhttp/dial"
	"github.com/adamwoolhether/rawhttp/request"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// throttle is a dial.Dialer, using the time/rate token
// bucket limiter to restrict outbound connections.
type throttle struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	next    dial.Dialer
	logFn   func() *slog.Logger
}

// NewDialer returns a dial.Dialer that throttles outbound connections
// using a token bucket rate limiter. logFn lazily resolves the logger at dial
// time, making option ordering irrelevant. A nil-returning logFn disables
// the wait logging.
func NewDialer(rps, burst int, logFn func() *slog.Logger, next dial.Dialer) (dial.Dialer, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if next == nil {
		return nil, errors.New("next dialer must not be nil")
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) Dial(ctx context.Context, target request.Target, serverName string) (net.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	var waited time.Duration
	var logger *slog.Logger
	if t.logFn != nil {
		logger = t.logFn()
	}
	if logger != nil && t.limiter.Tokens() < 1 {
		logger.Info("throttle tokens exhausted", "rate", t.rps, "burst", t.burst, "target", target.HostPort())

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "rate", t.rps, "burst", t.burst)
		}()
	}

	start := time.Now()

	err := t.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.Dial(ctx, target, serverName)
}
