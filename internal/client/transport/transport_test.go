package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	status int
	body   string
	header http.Header
}

func newSeqServer(t *testing.T, steps []step) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		s := steps[len(steps)-1]
		if int(n) <= len(steps) {
			s = steps[n-1]
		}
		for k, vs := range s.header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.body)
	}))
	t.Cleanup(srv.Close)

	return srv, &calls
}

func newRetry(maxAttempts int, sleeps *[]time.Duration) *RetryTransport {
	return &RetryTransport{
		Base:        &HTTPTransport{Client: &http.Client{Timeout: 5 * time.Second}},
		MaxAttempts: maxAttempts,
		BaseDelay:   800 * time.Millisecond,
		StepDelay:   100 * time.Millisecond,
		MaxDelay:    2500 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			return nil
		},
	}
}

func get(t *testing.T, tr Transport, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	return tr.Do(req)
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	srv, calls := newSeqServer(t, []step{
		{status: 503},
		{status: 503},
		{status: 200, body: `{"ok":true}`},
	})

	var sleeps []time.Duration
	tr := newRetry(5, &sleeps)

	resp, err := get(t, tr, srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(b))
	assert.EqualValues(t, 3, atomic.LoadInt32(calls), "must stop at first success")
	assert.Len(t, sleeps, 2, "one sleep per failed attempt")
}

func TestRetry_AcceptedIsTransient(t *testing.T) {
	srv, calls := newSeqServer(t, []step{
		{status: 202},
		{status: 200, body: `[]`},
	})

	resp, err := get(t, newRetry(5, nil), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, atomic.LoadInt32(calls))
}

func TestRetry_PermanentStatusNotRetried(t *testing.T) {
	srv, calls := newSeqServer(t, []step{
		{status: 404, body: `not found`},
	})

	resp, err := get(t, newRetry(5, nil), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls), "4xx must not be retried")
}

func TestRetry_Exhausted(t *testing.T) {
	const maxAttempts = 5

	srv, calls := newSeqServer(t, []step{
		{status: 503},
	})

	_, err := get(t, newRetry(maxAttempts, nil), srv.URL)
	require.Error(t, err)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, maxAttempts, ex.Attempts)
	assert.EqualValues(t, maxAttempts, atomic.LoadInt32(calls), "total calls must equal the attempt budget")
}

func TestRetry_NetworkErrorRetried(t *testing.T) {
	srv, _ := newSeqServer(t, []step{{status: 200}})
	url := srv.URL
	srv.Close() // connection refused from now on

	var sleeps []time.Duration
	_, err := get(t, newRetry(3, &sleeps), url)
	require.Error(t, err)

	var ex *ExhaustedError
	require.ErrorAs(t, err, &ex)
	assert.Len(t, sleeps, 2)
}

func TestRetry_CanceledContextStops(t *testing.T) {
	srv, calls := newSeqServer(t, []step{{status: 503}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	_, err = newRetry(5, nil).Do(req)
	require.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestRetry_RetryAfterHonoredAndCapped(t *testing.T) {
	srv, _ := newSeqServer(t, []step{
		{status: 503, header: http.Header{"Retry-After": {"30"}}},
		{status: 200, body: `{}`},
	})

	var sleeps []time.Duration
	resp, err := get(t, newRetry(5, &sleeps), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Len(t, sleeps, 1)
	assert.Equal(t, 2500*time.Millisecond, sleeps[0], "Retry-After must be capped by MaxDelay")
}

func TestBackoff_BoundedNonDecreasing(t *testing.T) {
	r := &RetryTransport{
		BaseDelay: 800 * time.Millisecond,
		StepDelay: 100 * time.Millisecond,
		MaxDelay:  2500 * time.Millisecond,
	}

	prev := time.Duration(0)
	for attempt := 1; attempt <= 30; attempt++ {
		d := r.backoff(attempt)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		assert.LessOrEqual(t, d, 2500*time.Millisecond, "attempt %d", attempt)
		prev = d
	}
	assert.Equal(t, 2500*time.Millisecond, r.backoff(30), "ceiling must be reached")
}

func TestConcurrencyTransport_Limits(t *testing.T) {
	var inFlight, peak int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.WriteHeader(200)
	}))
	t.Cleanup(srv.Close)

	tr, err := Build(Options{
		HTTPClient:  srv.Client(),
		MaxAttempts: 1,
		Concurrency: 2,
	})
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			resp, err := get(t, tr, srv.URL)
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}
