package client

import (
	"log/slog"
	"net/http"
	"time"

	"chizhikfront/internal/client/httpc"
	"chizhikfront/internal/client/transport"
)

type Transport = transport.Transport

type Options struct {
	HTTPClient  *http.Client
	MaxAttempts int
	Workers     int

	BaseDelay time.Duration
	StepDelay time.Duration
	MaxDelay  time.Duration

	Logger *slog.Logger
}

func Build(opts Options) (Transport, error) {
	return transport.Build(transport.Options{
		HTTPClient:  opts.HTTPClient,
		MaxAttempts: opts.MaxAttempts,
		Concurrency: opts.Workers,
		BaseDelay:   opts.BaseDelay,
		StepDelay:   opts.StepDelay,
		MaxDelay:    opts.MaxDelay,
		Logger:      opts.Logger,
	})
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return httpc.New(timeout)
}
