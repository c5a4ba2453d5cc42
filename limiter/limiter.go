// Package limiter spaces out calls to third-party APIs. A Limiter enforces a
// fixed courtesy delay between calls, plus any Retry-After deadline an
// upstream has handed us. Deadlines can be persisted to a file so that a
// restarted process keeps honoring them.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// New returns a Limiter that allows one call per delay and persists
// Retry-After deadlines to filename. An empty filename disables persistence.
func New(filename string, delay time.Duration) *Limiter {
	return &Limiter{
		filename: filename,
		delay:    delay,
		rate:     rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Every returns an in-memory Limiter that allows one call per delay. A zero
// delay never waits.
func Every(delay time.Duration) *Limiter {
	return New("", delay)
}

type Limiter struct {
	mu       sync.Mutex
	filename string
	delay    time.Duration
	rate     *rate.Limiter
	nextAt   time.Time
}

// Delay is the courtesy delay between calls.
func (lim *Limiter) Delay() time.Duration {
	return lim.delay
}

// Load restores a persisted Retry-After deadline, if there is one.
func (lim *Limiter) Load() error {
	if lim.filename == "" {
		return nil
	}
	bs, err := os.ReadFile(lim.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error reading limiter file '%s': %w", lim.filename, err)
	}

	nextAt, err := time.Parse(time.UnixDate, string(bs))
	if err != nil {
		return fmt.Errorf("error parsing limiter file '%s': %w", lim.filename, err)
	}

	lim.mu.Lock()
	defer lim.mu.Unlock()
	lim.nextAt = nextAt
	return nil
}

// NextAt is the Retry-After deadline, or the zero time.
func (lim *Limiter) NextAt() time.Time {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	return lim.nextAt
}

// Wait blocks until both the Retry-After deadline has passed and the courtesy
// delay since the previous call has elapsed.
func (lim *Limiter) Wait(ctx context.Context) error {
	lim.mu.Lock()
	nextAt := lim.nextAt
	lim.mu.Unlock()

	if !nextAt.IsZero() {
		dur := time.Until(nextAt)
		if dur > time.Second {
			log.Printf("waiting %s until %s",
				dur.Truncate(time.Second),
				nextAt.Format(time.StampMilli))
		}

		timer := time.NewTimer(dur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lim.mu.Lock()
		lim.nextAt = time.Time{}
		lim.mu.Unlock()
		if lim.filename != "" {
			if err := os.Remove(lim.filename); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}

	return lim.rate.Wait(ctx)
}

// SetNextAt records a Retry-After header value, in seconds. An empty value
// means a minute. It returns how long callers will wait.
func (lim *Limiter) SetNextAt(retryAfter string) (time.Duration, error) {
	if retryAfter == "" {
		retryAfter = "60"
	}
	seconds, err := strconv.ParseInt(retryAfter, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing retry-after '%s': %w", retryAfter, err)
	}
	waitTime := time.Duration(seconds)*time.Second + time.Second
	nextAt := time.Now().Add(waitTime)

	lim.mu.Lock()
	lim.nextAt = nextAt
	lim.mu.Unlock()

	if lim.filename != "" {
		if err := os.WriteFile(lim.filename, []byte(nextAt.Format(time.UnixDate)), 0666); err != nil {
			return 0, fmt.Errorf("error writing limiter file '%s': %w", lim.filename, err)
		}
	}
	return waitTime, nil
}
