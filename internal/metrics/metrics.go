// Package metrics holds the Prometheus counters the core increments: a
// dropped malformed packet counts a ProtocolViolation, and the
// reconciling operations (sweep installs/removals, LB backend selections)
// an operator watches to confirm the core is behaving.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the set of counters/gauges the core updates. It embeds no
// global state: callers construct one with NewRegistry and pass it
// through, the same way a *log.Logger is threaded through rather than
// reached for as a package global.
type Registry struct {
	ProtocolViolations      prometheus.Counter
	SwitchUnavailable       prometheus.Counter
	ResolutionMisses        prometheus.Counter
	SweepInstalls           prometheus.Counter
	SweepRemovals           prometheus.Counter
	BackendSelections       *prometheus.CounterVec
	TopologyInconsistencies prometheus.Counter
}

// NewRegistry constructs a Registry and registers its collectors with reg.
// Passing a fresh prometheus.NewRegistry() keeps tests hermetic; passing
// prometheus.DefaultRegisterer wires it into the process-wide /metrics
// endpoint.
func NewRegistry(reg prometheus.Registerer) *Registry {
	m := &Registry{
		ProtocolViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "protocol_violations_total",
			Help:      "Packet-in frames dropped for failing to parse as Ethernet/ARP/IPv4/TCP.",
		}),
		SwitchUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "switch_unavailable_total",
			Help:      "Flow-mod or packet-out operations dropped because the target switch was not connected.",
		}),
		ResolutionMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "resolution_misses_total",
			Help:      "TCP SYNs to a VIP dropped because the backend's MAC address could not be resolved.",
		}),
		SweepInstalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "sweep_installs_total",
			Help:      "SPS flow entries installed by a host-route sweep.",
		}),
		SweepRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "sweep_removals_total",
			Help:      "SPS flow entries removed by a host-route sweep.",
		}),
		BackendSelections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "lb_backend_selections_total",
			Help:      "SYNs dispatched to a backend, labeled by VIP.",
		}, []string{"vip"}),
		TopologyInconsistencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdncore",
			Name:      "topology_inconsistencies_total",
			Help:      "Snapshots found to reference a link or host attachment to an unknown switch.",
		}),
	}

	reg.MustRegister(
		m.ProtocolViolations,
		m.SwitchUnavailable,
		m.ResolutionMisses,
		m.SweepInstalls,
		m.SweepRemovals,
		m.BackendSelections,
		m.TopologyInconsistencies,
	)
	return m
}
