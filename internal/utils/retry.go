package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// RetryConfig controls exponential backoff for transient network failures.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig is used for watch page fetches. Caption payload fetches
// are not retried; their failures feed the next strategy instead.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  3,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
}

// RetryDo runs fn up to MaxRetries+1 times, backing off exponentially with
// jitter between attempts. Only transient network errors are retried; any
// other error (including HTTP status errors surfaced by the caller) returns
// immediately.
func RetryDo[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	wait := cfg.InitialWait
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			jitter := time.Duration(RandomInt(int(wait / 4)))
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(wait + jitter):
			}
			wait = time.Duration(float64(wait) * cfg.Multiplier)
			if wait > cfg.MaxWait {
				wait = cfg.MaxWait
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransientNetError(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("giving up after %d retries: %w", cfg.MaxRetries, lastErr)
}

// IsTransientNetError reports whether err is a network-level failure worth
// retrying: timeouts, DNS hiccups, connection resets, truncated reads.
func IsTransientNetError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsNotFound
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}

	return false
}
