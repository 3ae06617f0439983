// Package remotewrite encodes time-series into Prometheus remote-write
// requests: a snappy-compressed protobuf WriteRequest sent by HTTP POST.
package remotewrite

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/golang/snappy"
	"github.com/prometheus/prometheus/prompb"

	"github.com/sakti/agemon/internal/models"
)

// ProtocolVersion is the remote-write protocol version the encoder speaks.
const ProtocolVersion = "0.1.0"

// Encoder builds remote-write HTTP requests.
type Encoder struct {
	userAgent string
}

// NewEncoder creates an encoder that identifies itself as agemon/<version>.
func NewEncoder(version string) *Encoder {
	return &Encoder{userAgent: "agemon/" + version}
}

// BuildRequest encodes series into a POST request for endpoint.
// The endpoint must be an absolute http or https URL.
func (e *Encoder) BuildRequest(ctx context.Context, series []models.TimeSeries, endpoint string) (*http.Request, error) {
	if err := validateURL(endpoint); err != nil {
		return nil, err
	}

	data, err := toWriteRequest(series).Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal write request: %w", err)
	}
	body := snappy.Encode(nil, data)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Encoding", "snappy")
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("X-Prometheus-Remote-Write-Version", ProtocolVersion)
	return req, nil
}

func validateURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid remote write URL %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid remote write URL %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid remote write URL %q: missing host", endpoint)
	}
	return nil
}

func toWriteRequest(series []models.TimeSeries) *prompb.WriteRequest {
	req := &prompb.WriteRequest{
		Timeseries: make([]prompb.TimeSeries, 0, len(series)),
	}
	for _, ts := range series {
		out := prompb.TimeSeries{
			Labels:  make([]prompb.Label, 0, len(ts.Labels)),
			Samples: make([]prompb.Sample, 0, len(ts.Samples)),
		}
		for _, l := range ts.Labels {
			out.Labels = append(out.Labels, prompb.Label{Name: l.Name, Value: l.Value})
		}
		for _, s := range ts.Samples {
			out.Samples = append(out.Samples, prompb.Sample{Value: s.Value, Timestamp: s.Timestamp})
		}
		req.Timeseries = append(req.Timeseries, out)
	}
	return req
}
