// Package sender implements the remote-write push. It hands the series to the
// encoder, attaches Basic auth when configured and POSTs the request once.
// There is no retry: a failed push is reported to the caller and the next
// cycle starts fresh.
package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sakti/agemon/internal/config"
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/telemetry"
)

const (
	// requestTimeout is the HTTP request timeout for each push.
	requestTimeout = config.PushTimeout

	// maxErrorBody bounds how much of a non-2xx response body is logged.
	maxErrorBody = 512
)

// Encoder turns a batch of series into a ready-to-send request.
type Encoder interface {
	BuildRequest(ctx context.Context, series []models.TimeSeries, url string) (*http.Request, error)
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sender pushes each cycle's series to the remote-write endpoint.
type Sender struct {
	client   Doer
	encoder  Encoder
	url      string
	username string
	password string
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// Option customises a Sender.
type Option func(*Sender)

// WithClient replaces the default HTTP client.
func WithClient(c Doer) Option {
	return func(s *Sender) { s.client = c }
}

// WithMetrics records push outcomes in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Sender) { s.metrics = m }
}

// New creates a Sender for the remote-write settings in cfg.
func New(cfg config.RemoteWriteConfig, encoder Encoder, logger *zap.Logger, opts ...Option) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sender{
		client: &http.Client{
			Timeout: requestTimeout,
		},
		encoder:  encoder,
		url:      cfg.URL,
		username: cfg.Username,
		password: cfg.Password,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push encodes and sends series. Any HTTP response, whatever its status,
// completes the push; the status is only logged. Encoding failures return a
// *BuildError and network failures a *TransportError.
func (s *Sender) Push(ctx context.Context, series []models.TimeSeries) error {
	s.metrics.SetSeriesPushed(len(series))

	req, err := s.encoder.BuildRequest(ctx, series, s.url)
	if err != nil {
		s.metrics.ObservePushError("build")
		return &BuildError{URL: s.url, Err: err}
	}

	if s.username != "" && s.password != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.ObservePushError("transport")
		return &TransportError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()
	s.metrics.ObservePushResponse(resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		s.logger.Debug("Push accepted",
			zap.Int("status", resp.StatusCode),
			zap.Int("series", len(series)))
		return nil
	}

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	io.Copy(io.Discard, resp.Body)
	s.logger.Warn("Remote write endpoint rejected push",
		zap.Int("status", resp.StatusCode),
		zap.Int("series", len(series)),
		zap.ByteString("body", excerpt))
	return nil
}

// BuildError indicates the encoder could not produce a request.
type BuildError struct {
	URL string
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build remote write request for %s: %v", e.URL, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// TransportError indicates the request failed at the network layer.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send remote write request to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsBuildError reports whether err is or wraps a *BuildError.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
