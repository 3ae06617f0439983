package sender

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakti/agemon/internal/config"
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/remotewrite"
)

var testSeries = []models.TimeSeries{
	models.NewSeries(models.Cycle{Hostname: "h", Timestamp: 1}, "memory_usage_ratio", 0.25),
}

// presetAuthEncoder wraps the real encoder and sets an Authorization header
// that the sender must overwrite.
type presetAuthEncoder struct {
	*remotewrite.Encoder
}

func (e presetAuthEncoder) BuildRequest(ctx context.Context, series []models.TimeSeries, url string) (*http.Request, error) {
	req, err := e.Encoder.BuildRequest(ctx, series, url)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer from-encoder")
	return req, nil
}

type failingDoer struct{ err error }

func (d failingDoer) Do(*http.Request) (*http.Response, error) { return nil, d.err }

func newServer(t *testing.T, status int, seen *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.Header.Clone()
		}
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		w.Write([]byte("out of order sample"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPush_BasicAuth(t *testing.T) {
	var seen http.Header
	srv := newServer(t, http.StatusNoContent, &seen)

	s := New(config.RemoteWriteConfig{URL: srv.URL, Username: "user", Password: "pass"},
		presetAuthEncoder{remotewrite.NewEncoder("test")}, nil)

	require.NoError(t, s.Push(context.Background(), testSeries))
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
	assert.Equal(t, want, seen.Get("Authorization"))
	assert.Equal(t, "snappy", seen.Get("Content-Encoding"))
}

func TestPush_AuthRequiresBothCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"none", "", ""},
		{"username only", "user", ""},
		{"password only", "", "pass"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen http.Header
			srv := newServer(t, http.StatusNoContent, &seen)

			s := New(config.RemoteWriteConfig{URL: srv.URL, Username: tt.username, Password: tt.password},
				remotewrite.NewEncoder("test"), nil)

			require.NoError(t, s.Push(context.Background(), testSeries))
			assert.Empty(t, seen.Get("Authorization"))
		})
	}
}

func TestPush_Non2xxCompletesPush(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		srv := newServer(t, status, nil)
		s := New(config.RemoteWriteConfig{URL: srv.URL}, remotewrite.NewEncoder("test"), nil)
		assert.NoError(t, s.Push(context.Background(), testSeries), "status %d", status)
	}
}

func TestPush_BuildError(t *testing.T) {
	s := New(config.RemoteWriteConfig{URL: "::not-a-url"}, remotewrite.NewEncoder("test"), nil,
		WithClient(failingDoer{err: errors.New("must not be called")}))

	err := s.Push(context.Background(), testSeries)
	require.Error(t, err)
	assert.True(t, IsBuildError(err))
	assert.False(t, IsTransportError(err))

	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "::not-a-url", be.URL)
}

func TestPush_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := New(config.RemoteWriteConfig{URL: url}, remotewrite.NewEncoder("test"), nil)

	err := s.Push(context.Background(), testSeries)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Contains(t, err.Error(), url)
}

func TestPush_TransportErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	s := New(config.RemoteWriteConfig{URL: "http://localhost:1/api/v1/write"}, remotewrite.NewEncoder("test"), nil,
		WithClient(failingDoer{err: cause}))

	err := s.Push(context.Background(), testSeries)
	assert.ErrorIs(t, err, cause)
	assert.True(t, strings.HasPrefix(err.Error(), "send remote write request"))
}

func TestNew_DefaultClientTimeout(t *testing.T) {
	s := New(config.RemoteWriteConfig{URL: "http://localhost"}, remotewrite.NewEncoder("test"), nil)
	client, ok := s.client.(*http.Client)
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, client.Timeout)
}
