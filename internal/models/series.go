// Package models defines the time-series data structures produced by the
// collectors and handed to the remote-write sender.
package models

// MetricPrefix namespaces every metric emitted by the agent.
const MetricPrefix = "agemon_"

// HostnameLabel is the label carrying the cycle hostname on every series.
const HostnameLabel = "hostname"

// Unknown is the value used for any OS-provided string that is unavailable.
const Unknown = "unknown"

// Label is a single name/value dimension of a series.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Sample is a single value at a point in time.
// Timestamp is in milliseconds since the Unix epoch.
type Sample struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

// TimeSeries is a labeled sequence of samples. Collectors emit exactly one
// sample per series per cycle.
type TimeSeries struct {
	Labels  []Label  `json:"labels"`
	Samples []Sample `json:"samples"`
}

// Cycle is the per-tick context shared by every series produced in that tick,
// so that one push is time-aligned.
type Cycle struct {
	Hostname  string
	Timestamp int64
}

// Label returns the value of the named label and whether it is present.
func (ts TimeSeries) Label(name string) (string, bool) {
	for _, l := range ts.Labels {
		if l.Name == name {
			return l.Value, true
		}
	}
	return "", false
}

// Name returns the metric name of the series.
func (ts TimeSeries) Name() string {
	v, _ := ts.Label(MetricNameLabel)
	return v
}
