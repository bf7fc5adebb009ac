// Package app is module init: it takes the host framework's switch and
// device services plus the parsed configuration and assembles the
// topology store, routing engine, host-route installer, flow pipeline,
// edge handler and event dispatcher into a running Dispatcher. This is the
// one fatal-at-startup path in the core: everything past this point only
// logs and drops.
package app

import (
	"context"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ovn-sdncore/sdncore/internal/config"
	"github.com/ovn-sdncore/sdncore/internal/dispatch"
	"github.com/ovn-sdncore/sdncore/internal/hostroute"
	"github.com/ovn-sdncore/sdncore/internal/lb"
	"github.com/ovn-sdncore/sdncore/internal/metrics"
	"github.com/ovn-sdncore/sdncore/internal/ofsvc"
	"github.com/ovn-sdncore/sdncore/internal/pipeline"
	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// New wires the core from cfg and the host framework's switch/device
// services. reg receives the Prometheus collectors; pass
// prometheus.NewRegistry() for a hermetic instance or
// prometheus.DefaultRegisterer to publish on the process-wide endpoint.
//
// links is optional: when non-nil, its current link set is used to
// bootstrap the topology store before New returns, so a dispatcher
// assembled mid-session (the host framework restarting this module
// without restarting link discovery) starts with a topology instead of an
// empty one. Pass nil when the caller will learn every link from its own
// event stream, switch-up included.
func New(cfg config.Config, switches ofsvc.SwitchService, devices ofsvc.DeviceService, links ofsvc.LinkService, reg prometheus.Registerer, ll *log.Logger) (*dispatch.Dispatcher, error) {
	if cfg.TableLB == cfg.TableSPS {
		return nil, pipeline.ErrTablesEqual
	}

	m := metrics.NewRegistry(reg)
	registry := lb.ParseConfig(cfg.Instances, ll)

	pipe, err := pipeline.NewManager(cfg.TableLB, cfg.TableSPS, registry, switches, ll)
	if err != nil {
		return nil, err
	}

	store := topo.NewStore()
	installer := hostroute.NewInstaller(cfg.TableSPS, switches, ll, m)
	edge := lb.NewEdgeHandler(cfg.TableLB, registry, devices, switches, pipe, ll, m)

	d := dispatch.New(store, installer, pipe, edge, m, ll)

	if links != nil {
		bootstrapLinks(d, links)
	}

	return d, nil
}

// bootstrapLinks seeds d's topology store from links.Links() before the
// dispatcher sees its first event-stream link-up. The switches at either
// end of a link are not yet known to d at this point; DispatchLink's
// underlying Store.ApplyLink tolerates that (the link is simply not
// routable until the matching switch-up events arrive), which
// Snapshot.Validate surfaces rather than treats as fatal.
func bootstrapLinks(d *dispatch.Dispatcher, links ofsvc.LinkService) {
	ctx := context.Background()
	for _, lv := range links.Links() {
		d.DispatchLink(ctx, dispatch.LinkEvent{A: lv.A, APort: lv.APort, B: lv.B, BPort: lv.BPort, Up: true})
	}
}
