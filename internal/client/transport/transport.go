package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// SleepFunc is injectable so retry loops can be tested without real timers.
type SleepFunc func(ctx context.Context, d time.Duration) error

// DefaultTransientStatuses models a backend that may still be constructing
// a resource (202: tree is being built in the background; 503: warming up;
// 502/504: upstream timeout) and should be polled.
var DefaultTransientStatuses = []int{
	http.StatusAccepted,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

type Options struct {
	HTTPClient  *http.Client
	MaxAttempts int
	Concurrency int // ограничение одновременных запросов

	BaseDelay time.Duration // backoff first delay
	StepDelay time.Duration // backoff growth per attempt
	MaxDelay  time.Duration // backoff ceiling

	Transient []int // statuses worth polling; nil => DefaultTransientStatuses
	Sleep     SleepFunc

	Logger *slog.Logger
}

func (o Options) validate() error {
	if o.HTTPClient == nil {
		return fmt.Errorf("HTTPClient is nil")
	}
	if o.MaxAttempts < 0 {
		return fmt.Errorf("MaxAttempts must be >= 0")
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("Concurrency must be >= 0")
	}
	return nil
}

func Build(opts Options) (Transport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 800 * time.Millisecond
	}
	if opts.StepDelay <= 0 {
		opts.StepDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 2500 * time.Millisecond
	}

	var t Transport = &HTTPTransport{Client: opts.HTTPClient}

	// retry слой
	if opts.MaxAttempts > 1 {
		t = &RetryTransport{
			Base:        t,
			MaxAttempts: opts.MaxAttempts,
			BaseDelay:   opts.BaseDelay,
			StepDelay:   opts.StepDelay,
			MaxDelay:    opts.MaxDelay,
			Transient:   opts.Transient,
			Sleep:       opts.Sleep,
			Log:         opts.Logger,
		}
	}

	// concurrency слой
	if opts.Concurrency > 0 {
		t = &ConcurrencyTransport{
			Base: t,
			sem:  newSemaphore(opts.Concurrency),
		}
	}

	return t, nil
}

// ExhaustedError is the terminal failure after the attempt budget is spent
// on transient statuses or network errors.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// HTTP transport

type HTTPTransport struct {
	Client *http.Client
}

func (h *HTTPTransport) Do(req *http.Request) (*http.Response, error) {
	return h.Client.Do(req)
}

// semaphore transport

type semaphore struct {
	ch chan struct{}
}

func newSemaphore(n int) *semaphore {
	if n <= 0 {
		n = 1
	}
	return &semaphore{ch: make(chan struct{}, n)}
}

func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) release() {
	<-s.ch
}

type ConcurrencyTransport struct {
	Base Transport
	sem  *semaphore
}

func (t *ConcurrencyTransport) Do(req *http.Request) (*http.Response, error) {
	if err := t.sem.acquire(req.Context()); err != nil {
		return nil, err
	}
	defer t.sem.release()

	return t.Base.Do(req)
}

// RetryTransport polls through transient statuses and network failures with a
// bounded, non-decreasing backoff. Non-transient statuses are returned to the
// caller untouched: 4xx and unexpected 5xx will not self-heal and must not be
// masked by long silent waits.
type RetryTransport struct {
	Base        Transport
	MaxAttempts int

	BaseDelay time.Duration
	StepDelay time.Duration
	MaxDelay  time.Duration

	Transient []int
	Sleep     SleepFunc

	Log *slog.Logger
}

func (r *RetryTransport) Do(req *http.Request) (*http.Response, error) {
	l := r.Log
	if l == nil {
		l = slog.Default()
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		curReq, err := cloneForRetry(req)
		if err != nil {
			return nil, err
		}

		resp, err := r.Base.Do(curReq)
		if err == nil && resp != nil {
			if !r.transientStatus(resp.StatusCode) {
				return resp, nil
			}

			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 32*1024))
			_ = resp.Body.Close()

			lastErr = fmt.Errorf("transient status=%d", resp.StatusCode)

			l.Warn("transient status",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"status", resp.StatusCode,
				"url", req.URL.String(),
			)

			if attempt == maxAttempts {
				break
			}

			if d := retryAfterDelay(resp, r.maxDelay()); d > 0 {
				if err := sleep(req.Context(), d); err != nil {
					return nil, err
				}
				continue
			}
		} else {
			if err != nil && !r.transientError(req.Context(), err) {
				return nil, err
			}
			lastErr = err

			l.Warn("transient error",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"err", err,
				"url", req.URL.String(),
			)

			if attempt == maxAttempts {
				break
			}
		}

		if err := sleep(req.Context(), r.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, &ExhaustedError{Attempts: maxAttempts, LastErr: lastErr}
}

func (r *RetryTransport) transientStatus(code int) bool {
	set := r.Transient
	if set == nil {
		set = DefaultTransientStatuses
	}
	for _, c := range set {
		if c == code {
			return true
		}
	}
	return false
}

// transientError: сетевые сбои и таймаут одной попытки ретраим,
// отмену запроса вызывающим не ретраим никогда.
func (r *RetryTransport) transientError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (r *RetryTransport) backoff(attempt int) time.Duration {
	base := r.BaseDelay
	if base <= 0 {
		base = 800 * time.Millisecond
	}
	step := r.StepDelay
	if step <= 0 {
		step = 100 * time.Millisecond
	}

	d := base + step*time.Duration(attempt)
	if max := r.maxDelay(); d > max {
		d = max
	}
	return d
}

func (r *RetryTransport) maxDelay() time.Duration {
	if r.MaxDelay > 0 {
		return r.MaxDelay
	}
	return 2500 * time.Millisecond
}

func retryAfterDelay(resp *http.Response, max time.Duration) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	sec, err := strconv.Atoi(ra)
	if err != nil || sec <= 0 {
		return 0
	}
	d := time.Duration(sec) * time.Second
	if d > max {
		d = max
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneForRetry(req *http.Request) (*http.Request, error) {
	cloned := req.Clone(req.Context())

	if req.Body == nil || req.Body == http.NoBody {
		return cloned, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("cannot retry request with body: GetBody is nil")
	}
	b, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("cannot retry request with body: GetBody failed: %w", err)
	}
	cloned.Body = b
	return cloned, nil
}
