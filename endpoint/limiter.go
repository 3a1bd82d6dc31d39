package endpoint

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedConn wraps a net.Conn-shaped reader so an endpoint's
// inbound frame reads are throttled to a token bucket, giving a
// misbehaving or malicious peer backpressure instead of letting it
// drive unbounded CPU spent decoding frames.
type RateLimitedConn struct {
	net Reader
	lim *rate.Limiter
}

// Reader is the subset of net.Conn this package throttles; Endpoint
// itself only ever calls Read on its connection.
type Reader interface {
	Read(p []byte) (int, error)
}

// NewRateLimitedConn limits r to bytesPerSecond sustained throughput,
// permitting bursts up to burst bytes before throttling kicks in.
func NewRateLimitedConn(r Reader, bytesPerSecond, burst int) *RateLimitedConn {
	return &RateLimitedConn{
		net: r,
		lim: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

func (c *RateLimitedConn) Read(p []byte) (int, error) {
	if b := c.lim.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	n, err := c.net.Read(p)
	if n > 0 {
		if waitErr := c.lim.WaitN(context.Background(), n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
