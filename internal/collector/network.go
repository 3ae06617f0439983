// Network I/O collector: cumulative per-interface counters.
package collector

import (
	"github.com/sakti/agemon/internal/models"
	"github.com/sakti/agemon/internal/sampler"
)

// Network counter names.
const (
	MetricNetReceivedBytes      = "agemon_network_received_bytes_total"
	MetricNetTransmittedBytes   = "agemon_network_transmitted_bytes_total"
	MetricNetReceivedPackets    = "agemon_network_received_packets_total"
	MetricNetTransmittedPackets = "agemon_network_transmitted_packets_total"
	MetricNetReceiveErrors      = "agemon_network_receive_errors_total"
	MetricNetTransmitErrors     = "agemon_network_transmit_errors_total"
)

// NetworkCollector collects network I/O counters per interface.
// Values are the OS's cumulative counters; rates are left to the backend.
type NetworkCollector struct{}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// Collect emits six counters per interface labeled with interface.
func (c *NetworkCollector) Collect(snap *sampler.Snapshot, cycle models.Cycle) []models.TimeSeries {
	series := make([]models.TimeSeries, 0, 6*len(snap.Networks))
	for _, n := range snap.Networks {
		iface := models.Label{Name: "interface", Value: n.Name}
		series = append(series,
			models.NewSeries(cycle, MetricNetReceivedBytes, float64(n.BytesRecv), iface),
			models.NewSeries(cycle, MetricNetTransmittedBytes, float64(n.BytesSent), iface),
			models.NewSeries(cycle, MetricNetReceivedPackets, float64(n.PacketsRecv), iface),
			models.NewSeries(cycle, MetricNetTransmittedPackets, float64(n.PacketsSent), iface),
			models.NewSeries(cycle, MetricNetReceiveErrors, float64(n.ErrIn), iface),
			models.NewSeries(cycle, MetricNetTransmitErrors, float64(n.ErrOut), iface),
		)
	}
	return series
}
