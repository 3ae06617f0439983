package models

import (
	"strings"

	"github.com/prometheus/common/model"
)

// MetricNameLabel is the reserved label holding the metric name.
const MetricNameLabel = model.MetricNameLabel

// Labels builds the label set for one series: the metric name, the hostname,
// then the extra dimensions in the order given.
//
// The name is forced into the agemon_ namespace. Extras cannot override the
// two mandatory labels; a repeated extra replaces the earlier value in place.
// Empty or non-UTF-8 values resolve to Unknown.
func Labels(hostname, name string, extra ...Label) []Label {
	out := make([]Label, 0, 2+len(extra))
	out = append(out,
		Label{Name: MetricNameLabel, Value: MetricName(name)},
		Label{Name: HostnameLabel, Value: labelValue(hostname)},
	)

	for _, l := range extra {
		if l.Name == "" || l.Name == MetricNameLabel || l.Name == HostnameLabel {
			continue
		}
		if i := indexOf(out, l.Name); i >= 0 {
			out[i].Value = labelValue(l.Value)
			continue
		}
		out = append(out, Label{Name: l.Name, Value: labelValue(l.Value)})
	}
	return out
}

// NewSeries returns a single-sample series stamped with the cycle's
// hostname and timestamp.
func NewSeries(cycle Cycle, name string, value float64, extra ...Label) TimeSeries {
	return TimeSeries{
		Labels:  Labels(cycle.Hostname, name, extra...),
		Samples: []Sample{{Value: value, Timestamp: cycle.Timestamp}},
	}
}

// MetricName returns name with the agemon_ prefix applied once.
func MetricName(name string) string {
	if strings.HasPrefix(name, MetricPrefix) {
		return name
	}
	return MetricPrefix + name
}

func labelValue(v string) string {
	if v == "" || !model.LabelValue(v).IsValid() {
		return Unknown
	}
	return v
}

func indexOf(labels []Label, name string) int {
	for i, l := range labels {
		if l.Name == name {
			return i
		}
	}
	return -1
}
