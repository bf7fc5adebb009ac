// Package dispatch is the event dispatcher: the single serialization
// point for every switch, link and host event, driving the topology
// store, the shortest-path engine and the host-route installer in a fixed
// order. Packet-in events are handed to the LB edge handler without being
// serialized against topology mutations.
package dispatch

import (
	"context"
	"log"
	"net"
	"sync"

	"github.com/ovn-sdncore/sdncore/internal/hostroute"
	"github.com/ovn-sdncore/sdncore/internal/lb"
	"github.com/ovn-sdncore/sdncore/internal/metrics"
	"github.com/ovn-sdncore/sdncore/internal/ofsvc"
	"github.com/ovn-sdncore/sdncore/internal/pipeline"
	"github.com/ovn-sdncore/sdncore/internal/routing"
	"github.com/ovn-sdncore/sdncore/internal/topo"
)

// A SwitchEvent reports a switch connecting or disconnecting.
type SwitchEvent struct {
	ID topo.SwitchID
	Up bool
}

// A LinkEvent reports a link between two switch ports coming up or going
// down.
type LinkEvent struct {
	A     topo.SwitchID
	APort topo.PortNo
	B     topo.SwitchID
	BPort topo.PortNo
	Up    bool
}

// A HostEvent reports a device attaching, moving, changing address, or
// detaching. Present=false removes the device's record entirely.
type HostEvent struct {
	DeviceKey string
	MAC       net.HardwareAddr
	IPv4      net.IP
	Attached  *topo.Attachment
	Present   bool
}

// Dispatcher serializes topology mutations and their downstream routing,
// host-route and pipeline recomputation onto a single logical thread.
// Packet-in handling runs concurrently with topology mutations and is not
// ordered against them beyond observing a monotonically increasing epoch.
type Dispatcher struct {
	store     *topo.Store
	installer *hostroute.Installer
	pipe      *pipeline.Manager
	edge      *lb.EdgeHandler
	metrics   *metrics.Registry
	log       *log.Logger

	mu sync.Mutex // serializes ApplySwitch/ApplyLink/ApplyHost + their downstream recomputation

	rtMu sync.RWMutex
	rt   routing.Table
}

// New constructs a Dispatcher wired to the given topology store and
// downstream components.
func New(store *topo.Store, installer *hostroute.Installer, pipe *pipeline.Manager, edge *lb.EdgeHandler, m *metrics.Registry, ll *log.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		installer: installer,
		pipe:      pipe,
		edge:      edge,
		metrics:   m,
		log:       ll,
	}
}

// RouteTable returns the most recently computed shortest-path table.
func (d *Dispatcher) RouteTable() routing.Table {
	d.rtMu.RLock()
	defer d.rtMu.RUnlock()
	return d.rt
}

func (d *Dispatcher) setRouteTable(rt routing.Table) {
	d.rtMu.Lock()
	d.rt = rt
	d.rtMu.Unlock()
}

// Status returns a read-only snapshot of the core's current topology and
// LB configuration, for an operator inspecting the module. It takes a
// fresh topology snapshot but does not otherwise affect dispatcher state.
func (d *Dispatcher) Status() ofsvc.StatusView {
	snap := d.store.Snapshot()

	connected := 0
	for _, sw := range snap.Switches {
		if sw.Connected {
			connected++
		}
	}
	routable := 0
	for _, h := range snap.Hosts {
		if h.Routable() {
			routable++
		}
	}

	return ofsvc.StatusView{
		Epoch:             snap.Epoch,
		Switches:          len(snap.Switches),
		ConnectedSwitches: connected,
		Links:             len(snap.Links),
		Hosts:             len(snap.Hosts),
		RoutableHosts:     routable,
		VIPs:              d.edge.VIPCount(),
	}
}

// DispatchSwitch applies a switch event, recomputes routing and sweeps
// host routes if the topology changed, and on switch-up installs the VIP
// catch rules and SPS default for that switch.
func (d *Dispatcher) DispatchSwitch(ctx context.Context, ev SwitchEvent) {
	d.mu.Lock()
	cs := d.store.ApplySwitch(ev.ID, ev.Up)
	d.afterChange(ctx, cs)
	d.mu.Unlock()

	if ev.Up {
		d.pipe.OnSwitchUp(ctx, ev.ID, d.metrics)
	}
}

// DispatchLink applies a link event and recomputes/sweeps if it changed
// the topology.
func (d *Dispatcher) DispatchLink(ctx context.Context, ev LinkEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cs := d.store.ApplyLink(ev.A, ev.APort, ev.B, ev.BPort, ev.Up)
	d.afterChange(ctx, cs)
}

// DispatchHost applies a host event. An address change is modeled as the
// caller removing the old record (Present=false) and adding the new one.
func (d *Dispatcher) DispatchHost(ctx context.Context, ev HostEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cs := d.store.ApplyHost(ev.DeviceKey, ev.MAC, ev.IPv4, ev.Attached, ev.Present)
	d.afterChange(ctx, cs)
}

// afterChange drives the downstream recomputation a ChangeSet calls for.
// Callers must hold d.mu.
func (d *Dispatcher) afterChange(ctx context.Context, cs topo.ChangeSet) {
	switch cs.Kind {
	case topo.ChangeNone:
		return
	case topo.ChangeTopology:
		snap := d.store.Snapshot()
		for _, ierr := range snap.Validate() {
			d.topologyInconsistent(ierr)
		}
		rt := routing.Compute(snap)
		d.setRouteTable(rt)
		d.installer.Sweep(ctx, snap, rt)
	case topo.ChangeHost:
		snap := d.store.Snapshot()
		d.installer.HostChanged(ctx, snap, d.RouteTable(), cs.Host)
	}
}

// DispatchPacketIn routes a packet-in to the LB edge handler. It is safe
// to call concurrently with DispatchSwitch/DispatchLink/DispatchHost;
// reading the topology epoch here (rather than inside the edge handler,
// which never consults topology state) gives the log line a consistent
// view of the topology generation the packet arrived under.
func (d *Dispatcher) DispatchPacketIn(ctx context.Context, pkt ofsvc.PacketIn) {
	epoch := d.store.Epoch()
	if err := d.edge.Handle(ctx, pkt); err != nil && d.log != nil {
		d.log.Printf("dispatch: switch %d port %d (epoch %d): %v", pkt.Switch, pkt.InPort, epoch, err)
	}
}

func (d *Dispatcher) topologyInconsistent(err *topo.TopologyInconsistentError) {
	if d.log != nil {
		d.log.Printf("dispatch: %s", err)
	}
	if d.metrics != nil {
		d.metrics.TopologyInconsistencies.Inc()
	}
}
